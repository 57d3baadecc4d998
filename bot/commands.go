package bot

import (
	"fmt"

	"casinobot/service"
	"casinobot/wagering"

	"github.com/bwmarrin/discordgo"
)

// slashCommands describes every command the bot registers. Bets are string
// options so malformed amounts reach the casino service as an invalid bet
// instead of being rejected by the client.
func slashCommands() []*discordgo.ApplicationCommand {
	betOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "bet",
		Description: "Chips to bet (capped at your balance)",
		Required:    true,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        service.CommandBalance,
			Description: "Check your chip balance",
		},
		{
			Name:        service.CommandDaily,
			Description: "Claim your daily chips",
		},
		{
			Name:        service.CommandCoinflip,
			Description: "Double or nothing on a coin flip",
			Options: []*discordgo.ApplicationCommandOption{
				betOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "choice",
					Description: "Heads or tails",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Heads", Value: string(wagering.Heads)},
						{Name: "Tails", Value: string(wagering.Tails)},
					},
				},
			},
		},
		{
			Name:        service.CommandSlots,
			Description: "Spin the slot machine",
			Options:     []*discordgo.ApplicationCommandOption{betOption},
		},
		{
			Name:        service.CommandHistory,
			Description: "Show your recent chip history",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range slashCommands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
