package balance

import (
	"context"
	"fmt"

	"casinobot/bot/common"
	"casinobot/models"
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	result, err := f.casino.ShowBalance(ctx, common.UserID(i))
	if err != nil {
		common.HandleError(s, i, common.FromCommandError(service.CommandBalance, err))
		return
	}

	common.RespondWithMessage(s, i, formatBalance(common.DisplayName(i), result))
}

func formatBalance(displayName string, result *models.BalanceResult) string {
	return fmt.Sprintf("💰 %s, your current balance: **%s chips**", displayName, common.FormatBalance(result.Balance))
}
