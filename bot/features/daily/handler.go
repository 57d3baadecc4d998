package daily

import (
	"context"
	"fmt"
	"time"

	"casinobot/bot/common"
	"casinobot/models"
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	result, err := f.casino.ClaimDaily(ctx, common.UserID(i))
	if err != nil {
		common.HandleError(s, i, common.FromCommandError(service.CommandDaily, err))
		return
	}

	common.RespondWithMessage(s, i, formatClaim(result, f.cooldown))
}

func formatClaim(result *models.DailyResult, cooldown time.Duration) string {
	return fmt.Sprintf("🎁 You claimed **%s chips**! New balance: **%s chips**. Next claim %s.",
		common.FormatBalance(result.Amount),
		common.FormatBalance(result.NewBalance),
		common.FormatDiscordTimestamp(time.Unix(result.ClaimedAt, 0).Add(cooldown), "R"))
}
