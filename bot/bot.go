package bot

import (
	"fmt"
	"time"

	"casinobot/bot/features/balance"
	"casinobot/bot/features/chat"
	"casinobot/bot/features/daily"
	"casinobot/bot/features/games"
	"casinobot/bot/features/history"
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token         string
	GuildID       string // empty registers commands globally
	DailyCooldown time.Duration
}

type Bot struct {
	config  Config
	session *discordgo.Session

	// Features
	balanceFeature *balance.Feature
	dailyFeature   *daily.Feature
	gamesFeature   *games.Feature
	historyFeature *history.Feature
	chatFeature    *chat.Feature
}

// New opens the gateway session and registers the slash commands.
// chatFeature may be nil when the chat responder is disabled.
func New(config Config, casino service.CasinoService, chatFeature *chat.Feature) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages
	if chatFeature != nil {
		dg.Identify.Intents |= discordgo.IntentsMessageContent
	}

	bot := &Bot{
		config:         config,
		session:        dg,
		balanceFeature: balance.New(casino),
		dailyFeature:   daily.New(casino, config.DailyCooldown),
		gamesFeature:   games.New(casino),
		historyFeature: history.New(casino),
		chatFeature:    chatFeature,
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleCommands)
	if chatFeature != nil {
		dg.AddHandler(chatFeature.HandleMessage)
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.String(),
		"guilds": len(r.Guilds),
		"chat":   b.chatFeature != nil,
	}).Info("Bot is ready")
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case service.CommandBalance:
		b.balanceFeature.HandleCommand(s, i)
	case service.CommandDaily:
		b.dailyFeature.HandleCommand(s, i)
	case service.CommandCoinflip:
		b.gamesFeature.HandleCoinflip(s, i)
	case service.CommandSlots:
		b.gamesFeature.HandleSlots(s, i)
	case service.CommandHistory:
		b.historyFeature.HandleCommand(s, i)
	}
}
