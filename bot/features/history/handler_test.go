package history

import (
	"testing"
	"time"

	"casinobot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHistoryEmbed(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		embed := buildHistoryEmbed("Lucky", nil)
		assert.Contains(t, embed.Description, "No activity yet")
		assert.Nil(t, embed.Footer)
	})

	t.Run("entries", func(t *testing.T) {
		at := time.Unix(1_700_000_000, 0)
		embed := buildHistoryEmbed("Lucky", []*models.BalanceHistory{
			{ChangeAmount: -50, BalanceAfter: 1250, TransactionType: models.TransactionTypeSlotsLoss, CreatedAt: at},
			{ChangeAmount: 300, BalanceAfter: 1300, TransactionType: models.TransactionTypeDailyReward, CreatedAt: at},
			{ChangeAmount: 100, BalanceAfter: 1000, TransactionType: models.TransactionTypeCoinflipWin, CreatedAt: at},
		})

		assert.Equal(t, "📜 Recent chips for Lucky", embed.Title)
		assert.Contains(t, embed.Description, "<t:1700000000:R> 🔴 **Slots loss** -50 → 1,250 chips")
		assert.Contains(t, embed.Description, "⚪ **Daily reward** +300 → 1,300 chips")
		assert.Contains(t, embed.Description, "🟢 **Coinflip win** +100 → 1,000 chips")
		require.NotNil(t, embed.Footer)
		assert.Equal(t, "Showing the last 3 entries", embed.Footer.Text)
	})
}
