package wagering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailyReward(t *testing.T) {
	const lastClaim int64 = 1_700_000_000

	t.Run("never claimed is eligible", func(t *testing.T) {
		outcome := DailyReward(lastClaim, 0, DefaultDailyPolicy)
		assert.True(t, outcome.Eligible)
		assert.Equal(t, int64(300), outcome.Amount)
	})

	t.Run("one second before cooldown", func(t *testing.T) {
		outcome := DailyReward(lastClaim+86399, lastClaim, DefaultDailyPolicy)
		assert.False(t, outcome.Eligible)
		assert.Equal(t, int64(1), outcome.SecondsRemaining)
		assert.Zero(t, outcome.Amount)
	})

	t.Run("exactly at cooldown", func(t *testing.T) {
		outcome := DailyReward(lastClaim+86400, lastClaim, DefaultDailyPolicy)
		assert.True(t, outcome.Eligible)
		assert.Equal(t, int64(300), outcome.Amount)
	})

	t.Run("custom policy", func(t *testing.T) {
		policy := DailyPolicy{CooldownSeconds: 60, RewardAmount: 5}
		outcome := DailyReward(lastClaim+20, lastClaim, policy)
		assert.False(t, outcome.Eligible)
		assert.Equal(t, int64(40), outcome.SecondsRemaining)
	})
}
