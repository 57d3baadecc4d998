package service

import (
	"context"

	"casinobot/events"
	"casinobot/models"
)

// AccountRepository defines the ledger store contract for one unit of work
type AccountRepository interface {
	// GetOrCreate returns the account, creating it with the default balance
	// when absent. The account stays locked for the rest of the unit of work.
	GetOrCreate(ctx context.Context, accountID string) (account *models.Account, created bool, err error)

	// UpdateBalance overwrites the balance, creating the account first if absent
	UpdateBalance(ctx context.Context, accountID string, newBalance int64) error

	// UpdateLastDailyClaim overwrites the cooldown timestamp
	UpdateLastDailyClaim(ctx context.Context, accountID string, claimedAt int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByAccount returns the newest entries for an account, newest first
	GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher collects events raised inside a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups ledger reads and writes that commit or roll back together
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates a fresh unit of work per command
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// CasinoService dispatches the casino commands
type CasinoService interface {
	// ShowBalance returns the current chip count
	ShowBalance(ctx context.Context, accountID string) (*models.BalanceResult, error)

	// ClaimDaily grants the daily reward or reports the remaining wait
	ClaimDaily(ctx context.Context, accountID string) (*models.DailyResult, error)

	// PlayCoinflip plays double-or-nothing on heads or tails
	PlayCoinflip(ctx context.Context, accountID string, bet int64, choice string) (*models.CoinflipResult, error)

	// PlaySlots spins the three reel slot machine
	PlaySlots(ctx context.Context, accountID string, bet int64) (*models.SlotsResult, error)

	// RecentHistory returns the latest ledger changes for an account
	RecentHistory(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error)
}

// CommandObserver receives command outcomes, usually for metrics
type CommandObserver interface {
	ObserveCommand(command string, outcome string)
	ObserveChips(game string, delta int64)
}

type noopObserver struct{}

func (noopObserver) ObserveCommand(string, string) {}
func (noopObserver) ObserveChips(string, int64)    {}
