package cmd

import (
	"context"
	"fmt"
	"time"

	"casinobot/bot"
	"casinobot/bot/features/chat"
	"casinobot/config"
	"casinobot/events"
	"casinobot/llm"
	"casinobot/observability"
	"casinobot/service"
	"casinobot/wagering"

	log "github.com/sirupsen/logrus"
)

// cleanupStack holds shutdown steps and runs them newest first
type cleanupStack []func()

func (c *cleanupStack) push(fn func()) {
	*c = append(*c, fn)
}

func (c *cleanupStack) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
	*c = nil
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"backend":     cfg.LedgerBackend,
	}).Info("Starting casino bot")

	// Anything started below is torn down in reverse on every return path
	var cleanup cleanupStack
	defer cleanup.run()

	// Event bus, optionally mirrored to NATS
	eventBus := events.NewBus()
	var publisher *events.NATSPublisher
	if cfg.NATSURL != "" {
		var err error
		publisher, err = events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to initialize event streaming: %w", err)
		}
		cleanup.push(publisher.Close)
		publisher.Attach(eventBus)
	}

	metrics := observability.NewMetrics()
	metrics.CountEvents(eventBus)

	store, err := openLedger(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	cleanup.push(store.close)
	if publisher != nil {
		store.checks["nats"] = func(context.Context) error {
			if !publisher.IsConnected() {
				return fmt.Errorf("not connected")
			}
			return nil
		}
	}

	casino := service.NewCasinoService(store.factory, wagering.NewEngine(wagering.DefaultSource()), service.Options{
		DailyPolicy: wagering.DailyPolicy{
			CooldownSeconds: cfg.DailyCooldownSeconds(),
			RewardAmount:    cfg.DailyReward,
		},
		Observer: metrics,
	})

	metricsServer := observability.NewServer(cfg.MetricsAddr, metrics.Registry(), store.checks)
	metricsServer.Start()
	cleanup.push(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error stopping metrics server: %v", err)
		}
	})

	// Chat responder
	var chatFeature *chat.Feature
	if cfg.ChatEnabled() {
		generator := llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.RoastMode)
		chatPool := llm.NewPool(generator, cfg.ChatWorkers, cfg.ChatQueueSize, cfg.ChatTimeout, metrics.SetChatQueueDepth)
		cleanup.push(chatPool.Close)
		chatFeature = chat.New(chatPool, cfg.AllowedChannelID, metrics)
	} else {
		log.Info("Chat responder disabled (OPENAI_API_KEY or ALLOWED_CHANNEL_ID not set)")
	}

	discordBot, err := bot.New(bot.Config{
		Token:         cfg.DiscordToken,
		GuildID:       cfg.DiscordGuildID,
		DailyCooldown: cfg.DailyCooldown,
	}, casino, chatFeature)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")

	// Stop taking new work first, then drain what is in flight
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}
	cleanup.run()

	log.Info("Shutdown completed")
	return nil
}
