// Package redisstore keeps the ledger in Redis. An account lives in a hash,
// its history in a capped list, and a lock key serializes units of work on
// the same account across processes.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"casinobot/events"
	"casinobot/models"
	"casinobot/service"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	historyCap        = 100
	defaultLockTTL    = 10 * time.Second
	lockRetryInterval = 10 * time.Millisecond
)

// ErrLockLost is returned by Commit when an account lock expired or changed
// hands before the writes could be applied.
var ErrLockLost = errors.New("account lock lost")

// releaseScript deletes the lock only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func accountKey(accountID string) string { return "casino:account:" + accountID }
func historyKey(accountID string) string { return "casino:history:" + accountID }
func lockKey(accountID string) string    { return "casino:lock:" + accountID }

// Connect opens a client and checks the server answers
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	log.WithField("addr", addr).Info("Connected to redis")
	return client, nil
}

// Store is a service.UnitOfWorkFactory backed by Redis
type Store struct {
	client         *redis.Client
	defaultBalance int64
	eventBus       *events.Bus
	lockTTL        time.Duration
}

// NewStore creates a store. eventBus may be nil.
func NewStore(client *redis.Client, defaultBalance int64, eventBus *events.Bus) *Store {
	return &Store{
		client:         client,
		defaultBalance: defaultBalance,
		eventBus:       eventBus,
		lockTTL:        defaultLockTTL,
	}
}

// Create implements service.UnitOfWorkFactory
func (s *Store) Create() service.UnitOfWork {
	return &unitOfWork{
		store:            s,
		transactionalBus: events.NewTransactionalBus(s.eventBus),
	}
}

// Ping is used as a health check
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// storedEntry is the JSON form of a history entry in the list
type storedEntry struct {
	ID              string         `json:"id"`
	AccountID       string         `json:"account_id"`
	BalanceBefore   int64          `json:"balance_before"`
	BalanceAfter    int64          `json:"balance_after"`
	ChangeAmount    int64          `json:"change_amount"`
	TransactionType string         `json:"transaction_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toStored(h *models.BalanceHistory) storedEntry {
	return storedEntry{
		ID:              h.ID,
		AccountID:       h.AccountID,
		BalanceBefore:   h.BalanceBefore,
		BalanceAfter:    h.BalanceAfter,
		ChangeAmount:    h.ChangeAmount,
		TransactionType: string(h.TransactionType),
		Metadata:        h.TransactionMetadata,
		CreatedAt:       h.CreatedAt,
	}
}

func (e storedEntry) toModel() *models.BalanceHistory {
	return &models.BalanceHistory{
		ID:                  e.ID,
		AccountID:           e.AccountID,
		BalanceBefore:       e.BalanceBefore,
		BalanceAfter:        e.BalanceAfter,
		ChangeAmount:        e.ChangeAmount,
		TransactionType:     models.TransactionType(e.TransactionType),
		TransactionMetadata: e.Metadata,
		CreatedAt:           e.CreatedAt,
	}
}

func parseAccount(accountID string, fields map[string]string) (*models.Account, error) {
	balance, err := strconv.ParseInt(fields["balance"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance for account %s: %w", accountID, err)
	}
	lastClaim, err := strconv.ParseInt(fields["last_daily_claim"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_daily_claim for account %s: %w", accountID, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	updatedAt, _ := time.Parse(time.RFC3339Nano, fields["updated_at"])

	return &models.Account{
		ID:             accountID,
		Balance:        balance,
		LastDailyClaim: lastClaim,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

type stagedAccount struct {
	account *models.Account
	dirty   bool
}

type unitOfWork struct {
	store            *Store
	ctx              context.Context
	started          bool
	held             map[string]string // account ID -> lock token
	staged           map[string]*stagedAccount
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
	u.ctx = ctx
	u.started = true
	u.held = make(map[string]string)
	u.staged = make(map[string]*stagedAccount)
	return nil
}

// Commit applies every staged write in one MULTI/EXEC while the account
// locks are still ours, releases the locks and then flushes queued events
func (u *unitOfWork) Commit() error {
	if !u.started {
		return fmt.Errorf("no transaction to commit")
	}
	defer u.finish()

	if !u.hasWrites() {
		return u.transactionalBus.Flush(u.ctx)
	}

	now := time.Now()
	writes := func(pipe redis.Pipeliner) error {
		for id, staged := range u.staged {
			if !staged.dirty {
				continue
			}
			staged.account.UpdatedAt = now
			pipe.HSet(u.ctx, accountKey(id), map[string]any{
				"balance":          staged.account.Balance,
				"last_daily_claim": staged.account.LastDailyClaim,
				"created_at":       staged.account.CreatedAt.Format(time.RFC3339Nano),
				"updated_at":       now.Format(time.RFC3339Nano),
			})
		}
		for _, entry := range u.history {
			payload, err := json.Marshal(toStored(entry))
			if err != nil {
				return fmt.Errorf("failed to marshal history entry: %w", err)
			}
			pipe.LPush(u.ctx, historyKey(entry.AccountID), payload)
			pipe.LTrim(u.ctx, historyKey(entry.AccountID), 0, historyCap-1)
		}
		return nil
	}

	locks := make([]string, 0, len(u.held))
	for id := range u.held {
		locks = append(locks, lockKey(id))
	}

	// the lock keys are watched so an expiry or takeover between the check
	// and EXEC aborts the transaction
	err := u.store.client.Watch(u.ctx, func(tx *redis.Tx) error {
		for id, token := range u.held {
			current, err := tx.Get(u.ctx, lockKey(id)).Result()
			if errors.Is(err, redis.Nil) || (err == nil && current != token) {
				return fmt.Errorf("account %s: %w", id, ErrLockLost)
			}
			if err != nil {
				return fmt.Errorf("failed to check lock for account %s: %w", id, err)
			}
		}
		_, err := tx.TxPipelined(u.ctx, writes)
		return err
	}, locks...)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrLockLost
	}
	if err != nil {
		u.transactionalBus.Discard()
		if errors.Is(err, ErrLockLost) {
			log.WithError(err).Warn("Discarding redis unit of work after losing its lock")
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return u.transactionalBus.Flush(u.ctx)
}

func (u *unitOfWork) hasWrites() bool {
	if len(u.history) > 0 {
		return true
	}
	for _, staged := range u.staged {
		if staged.dirty {
			return true
		}
	}
	return false
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
	// The caller's context may already be cancelled, the locks still need releasing
	ctx, cancel := context.WithTimeout(context.WithoutCancel(u.ctx), time.Second)
	defer cancel()

	for id, token := range u.held {
		if err := releaseScript.Run(ctx, u.store.client, []string{lockKey(id)}, token).Err(); err != nil {
			log.WithFields(log.Fields{
				"accountID": id,
				"error":     err,
			}).Warn("Failed to release account lock, it will expire")
		}
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

// acquire takes the account lock, polling until ctx is done
func (u *unitOfWork) acquire(ctx context.Context, accountID string) error {
	if _, ok := u.held[accountID]; ok {
		return nil
	}

	token := models.NewID()
	for {
		ok, err := u.store.client.SetNX(ctx, lockKey(accountID), token, u.store.lockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", accountID, err)
		}
		if ok {
			u.held[accountID] = token
			return nil
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("failed to lock account %s: %w", accountID, ctx.Err())
		}
	}
}

func (u *unitOfWork) load(ctx context.Context, accountID string) (*stagedAccount, bool, error) {
	if err := u.acquire(ctx, accountID); err != nil {
		return nil, false, err
	}
	if staged, ok := u.staged[accountID]; ok {
		return staged, false, nil
	}

	fields, err := u.store.client.HGetAll(ctx, accountKey(accountID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read account %s: %w", accountID, err)
	}

	if len(fields) == 0 {
		now := time.Now()
		staged := &stagedAccount{
			account: &models.Account{
				ID:        accountID,
				Balance:   u.store.defaultBalance,
				CreatedAt: now,
				UpdatedAt: now,
			},
			dirty: true,
		}
		u.staged[accountID] = staged
		return staged, true, nil
	}

	account, err := parseAccount(accountID, fields)
	if err != nil {
		return nil, false, err
	}
	staged := &stagedAccount{account: account}
	u.staged[accountID] = staged
	return staged, false, nil
}

type accountRepository struct {
	u *unitOfWork
}

func (r accountRepository) GetOrCreate(ctx context.Context, accountID string) (*models.Account, bool, error) {
	staged, created, err := r.u.load(ctx, accountID)
	if err != nil {
		return nil, false, err
	}
	out := *staged.account
	return &out, created, nil
}

func (r accountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	if newBalance < 0 {
		return fmt.Errorf("failed to update balance for account %s: balance cannot be negative", accountID)
	}
	staged, _, err := r.u.load(ctx, accountID)
	if err != nil {
		return err
	}
	staged.account.Balance = newBalance
	staged.dirty = true
	return nil
}

func (r accountRepository) UpdateLastDailyClaim(ctx context.Context, accountID string, claimedAt int64) error {
	staged, _, err := r.u.load(ctx, accountID)
	if err != nil {
		return err
	}
	staged.account.LastDailyClaim = claimedAt
	staged.dirty = true
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

// GetByAccount returns entries staged in this unit of work followed by the
// committed list, newest first
func (r balanceHistoryRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error) {
	var out []*models.BalanceHistory
	for i := len(r.u.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.u.history[i].AccountID == accountID {
			entry := *r.u.history[i]
			out = append(out, &entry)
		}
	}
	if len(out) >= limit {
		return out, nil
	}

	raw, err := r.u.store.client.LRange(ctx, historyKey(accountID), 0, int64(limit-len(out)-1)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read history for account %s: %w", accountID, err)
	}
	for _, item := range raw {
		var stored storedEntry
		if err := json.Unmarshal([]byte(item), &stored); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		out = append(out, stored.toModel())
	}
	return out, nil
}
