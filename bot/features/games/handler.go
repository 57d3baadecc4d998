package games

import (
	"context"
	"fmt"
	"strings"

	"casinobot/bot/common"
	"casinobot/models"
	"casinobot/service"
	"casinobot/wagering"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleCoinflip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	rawBet, _ := common.StringOption(i, "bet")
	choice, _ := common.StringOption(i, "choice")

	result, err := f.casino.PlayCoinflip(ctx, common.UserID(i), wagering.ParseBet(rawBet), choice)
	if err != nil {
		common.HandleError(s, i, common.FromCommandError(service.CommandCoinflip, err))
		return
	}

	common.RespondWithMessage(s, i, formatCoinflip(result))
}

func (f *Feature) handleSlots(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	rawBet, _ := common.StringOption(i, "bet")

	result, err := f.casino.PlaySlots(ctx, common.UserID(i), wagering.ParseBet(rawBet))
	if err != nil {
		common.HandleError(s, i, common.FromCommandError(service.CommandSlots, err))
		return
	}

	common.RespondWithMessage(s, i, formatSlots(result))
}

func formatCoinflip(result *models.CoinflipResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🪙 The coin shows **%s** (you picked %s, bet %s chips).\n",
		result.Outcome, result.Choice, common.FormatBalance(result.Bet))
	if result.Won {
		fmt.Fprintf(&b, "🎉 **You won %s chips!**", common.FormatBalance(result.Delta))
	} else {
		fmt.Fprintf(&b, "😔 **You lost %s chips.**", common.FormatBalance(-result.Delta))
	}
	fmt.Fprintf(&b, " New balance: **%s chips**", common.FormatBalance(result.NewBalance))
	return b.String()
}

func formatSlots(result *models.SlotsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎰 [ %s ]\n", common.FormatReels(result.Reels))
	switch {
	case result.Multiplier > 0:
		fmt.Fprintf(&b, "🎉 **x%d!** You won %s chips on a %s chip bet.",
			result.Multiplier, common.FormatBalance(result.Delta), common.FormatBalance(result.Bet))
	default:
		fmt.Fprintf(&b, "😔 No match. You lost %s chips.", common.FormatBalance(result.Bet))
	}
	fmt.Fprintf(&b, " New balance: **%s chips**", common.FormatBalance(result.NewBalance))
	return b.String()
}
