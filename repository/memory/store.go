// Package memory is an in-process ledger store. Each account has its own
// lock, held from the first access in a unit of work until it commits or
// rolls back. Writes are staged and become visible only on commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casinobot/events"
	"casinobot/models"
	"casinobot/service"
)

// Store holds committed ledger state
type Store struct {
	mu             sync.Mutex
	accounts       map[string]models.Account
	history        map[string][]*models.BalanceHistory
	locks          map[string]chan struct{}
	defaultBalance int64
	eventBus       *events.Bus
}

// NewStore creates an empty store. eventBus may be nil.
func NewStore(defaultBalance int64, eventBus *events.Bus) *Store {
	return &Store{
		accounts:       make(map[string]models.Account),
		history:        make(map[string][]*models.BalanceHistory),
		locks:          make(map[string]chan struct{}),
		defaultBalance: defaultBalance,
		eventBus:       eventBus,
	}
}

// Create implements service.UnitOfWorkFactory
func (s *Store) Create() service.UnitOfWork {
	return &unitOfWork{
		store:            s,
		transactionalBus: events.NewTransactionalBus(s.eventBus),
	}
}

// Snapshot returns the committed state of an account
func (s *Store) Snapshot(accountID string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	return account, ok
}

func (s *Store) lockFor(accountID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[accountID]
	if !ok {
		lock = make(chan struct{}, 1)
		s.locks[accountID] = lock
	}
	return lock
}

func (s *Store) apply(accounts map[string]*models.Account, history []*models.BalanceHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, account := range accounts {
		if prev, ok := s.accounts[id]; ok && prev.Balance == account.Balance && prev.LastDailyClaim == account.LastDailyClaim {
			continue
		}
		account.UpdatedAt = now
		s.accounts[id] = *account
	}
	for _, entry := range history {
		s.history[entry.AccountID] = append(s.history[entry.AccountID], entry)
	}
}

func (s *Store) recent(accountID string, limit int) []*models.BalanceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[accountID]
	out := make([]*models.BalanceHistory, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		entry := *entries[i]
		out = append(out, &entry)
	}
	return out
}

type unitOfWork struct {
	store            *Store
	started          bool
	held             map[string]chan struct{}
	staged           map[string]*models.Account
	history          []*models.BalanceHistory
	transactionalBus *events.TransactionalBus
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.started {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	u.started = true
	u.held = make(map[string]chan struct{})
	u.staged = make(map[string]*models.Account)
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.started {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.apply(u.staged, u.history)
	u.finish()
	return u.transactionalBus.Flush(context.Background())
}

func (u *unitOfWork) Rollback() error {
	if !u.started {
		return nil
	}
	u.transactionalBus.Discard()
	u.finish()
	return nil
}

func (u *unitOfWork) finish() {
	for _, lock := range u.held {
		<-lock
	}
	u.started = false
	u.held = nil
	u.staged = nil
	u.history = nil
}

func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if !u.started {
		panic("unit of work not started - call Begin() first")
	}
	return accountRepository{u}
}

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if !u.started {
		panic("unit of work not started - call Begin() first")
	}
	return balanceHistoryRepository{u}
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}

// acquire locks the account for the rest of the unit of work
func (u *unitOfWork) acquire(ctx context.Context, accountID string) error {
	if _, ok := u.held[accountID]; ok {
		return nil
	}
	lock := u.store.lockFor(accountID)
	select {
	case lock <- struct{}{}:
		u.held[accountID] = lock
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to lock account %s: %w", accountID, ctx.Err())
	}
}

// load returns the staged copy of the account, creating it when absent
func (u *unitOfWork) load(ctx context.Context, accountID string) (*models.Account, bool, error) {
	if err := u.acquire(ctx, accountID); err != nil {
		return nil, false, err
	}
	if account, ok := u.staged[accountID]; ok {
		return account, false, nil
	}

	committed, ok := u.store.Snapshot(accountID)
	if !ok {
		now := time.Now()
		committed = models.Account{
			ID:        accountID,
			Balance:   u.store.defaultBalance,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	account := committed
	u.staged[accountID] = &account
	return &account, !ok, nil
}

type accountRepository struct {
	u *unitOfWork
}

func (r accountRepository) GetOrCreate(ctx context.Context, accountID string) (*models.Account, bool, error) {
	account, created, err := r.u.load(ctx, accountID)
	if err != nil {
		return nil, false, err
	}
	out := *account
	return &out, created, nil
}

func (r accountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	if newBalance < 0 {
		return fmt.Errorf("failed to update balance for account %s: balance cannot be negative", accountID)
	}
	account, _, err := r.u.load(ctx, accountID)
	if err != nil {
		return err
	}
	account.Balance = newBalance
	return nil
}

func (r accountRepository) UpdateLastDailyClaim(ctx context.Context, accountID string, claimedAt int64) error {
	account, _, err := r.u.load(ctx, accountID)
	if err != nil {
		return err
	}
	account.LastDailyClaim = claimedAt
	return nil
}

type balanceHistoryRepository struct {
	u *unitOfWork
}

func (r balanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	if history.ID == "" {
		history.ID = models.NewID()
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	entry := *history
	r.u.history = append(r.u.history, &entry)
	return nil
}

// GetByAccount returns committed entries followed by entries staged in this
// unit of work, newest first
func (r balanceHistoryRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error) {
	var staged []*models.BalanceHistory
	for i := len(r.u.history) - 1; i >= 0; i-- {
		if r.u.history[i].AccountID == accountID {
			entry := *r.u.history[i]
			staged = append(staged, &entry)
		}
	}
	out := append(staged, r.u.store.recent(accountID, limit)...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
