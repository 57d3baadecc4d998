package cmd

import (
	"context"
	"fmt"

	"casinobot/config"
	"casinobot/database"
	"casinobot/events"
	"casinobot/observability"
	"casinobot/repository"
	"casinobot/repository/memory"
	"casinobot/repository/redisstore"
	"casinobot/service"

	log "github.com/sirupsen/logrus"
)

// ledger is the selected storage backend and what it needs at shutdown
type ledger struct {
	factory service.UnitOfWorkFactory
	checks  map[string]observability.HealthCheck
	close   func()
}

func openLedger(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (*ledger, error) {
	log.WithField("backend", cfg.LedgerBackend).Info("Opening ledger store")

	switch cfg.LedgerBackend {
	case config.BackendPostgres:
		databaseURL := cfg.GetDatabaseURL()
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &ledger{
			factory: repository.NewUnitOfWorkFactory(db, eventBus, cfg.StartingBalance),
			checks: map[string]observability.HealthCheck{
				"postgres": func(ctx context.Context) error { return db.Ping(ctx) },
			},
			close: db.Close,
		}, nil

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		store := redisstore.NewStore(client, cfg.StartingBalance, eventBus)
		return &ledger{
			factory: store,
			checks:  map[string]observability.HealthCheck{"redis": store.Ping},
			close: func() {
				if err := client.Close(); err != nil {
					log.WithError(err).Warn("Failed to close redis client")
				}
			},
		}, nil

	case config.BackendMemory:
		log.Warn("Using the in-memory ledger, balances are lost on restart")
		return &ledger{
			factory: memory.NewStore(cfg.StartingBalance, eventBus),
			checks:  map[string]observability.HealthCheck{},
			close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}
