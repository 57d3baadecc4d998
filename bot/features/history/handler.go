package history

import (
	"context"
	"fmt"
	"strings"

	"casinobot/bot/common"
	"casinobot/models"
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const embedColor = 0xF1C40F

var transactionLabels = map[models.TransactionType]string{
	models.TransactionTypeInitial:      "Starting chips",
	models.TransactionTypeDailyReward:  "Daily reward",
	models.TransactionTypeCoinflipWin:  "Coinflip win",
	models.TransactionTypeCoinflipLoss: "Coinflip loss",
	models.TransactionTypeSlotsWin:     "Slots win",
	models.TransactionTypeSlotsLoss:    "Slots loss",
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	entries, err := f.casino.RecentHistory(ctx, common.UserID(i), defaultLimit)
	if err != nil {
		common.HandleError(s, i, common.FromCommandError(service.CommandHistory, err))
		return
	}

	if err := common.RespondWithEmbed(s, i, buildHistoryEmbed(common.DisplayName(i), entries), true); err != nil {
		log.Errorf("Error responding to history command: %v", err)
	}
}

func outcomeMarker(tt models.TransactionType) string {
	switch {
	case tt.IsWinType():
		return "🟢"
	case tt.IsLossType():
		return "🔴"
	default:
		return "⚪"
	}
}

func buildHistoryEmbed(displayName string, entries []*models.BalanceHistory) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📜 Recent chips for %s", displayName),
		Color: embedColor,
	}

	if len(entries) == 0 {
		embed.Description = "No activity yet. Try /daily to get started."
		return embed
	}

	var b strings.Builder
	for _, entry := range entries {
		label, ok := transactionLabels[entry.TransactionType]
		if !ok {
			label = entry.TransactionType.String()
		}
		fmt.Fprintf(&b, "%s %s **%s** %s → %s chips\n",
			common.FormatDiscordTimestamp(entry.CreatedAt, "R"),
			outcomeMarker(entry.TransactionType),
			label,
			common.FormatDelta(entry.ChangeAmount),
			common.FormatBalance(entry.BalanceAfter))
	}
	embed.Description = b.String()
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Showing the last %d entries", len(entries)),
	}
	return embed
}
