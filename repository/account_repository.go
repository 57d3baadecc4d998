package repository

import (
	"context"
	"fmt"

	"casinobot/database"
	"casinobot/models"
)

// AccountRepository implements the AccountRepository interface on Postgres
type AccountRepository struct {
	q              queryable
	defaultBalance int64
}

// NewAccountRepository creates an account repository outside of a transaction.
// Locks taken by GetOrCreate only last for a single statement there.
func NewAccountRepository(db *database.DB, defaultBalance int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, defaultBalance: defaultBalance}
}

// newAccountRepositoryWithTx creates an account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable, defaultBalance int64) *AccountRepository {
	return &AccountRepository{q: tx, defaultBalance: defaultBalance}
}

// GetOrCreate inserts the default row when absent, then reads the row with
// FOR UPDATE so concurrent commands on the same account queue behind this
// transaction.
func (r *AccountRepository) GetOrCreate(ctx context.Context, accountID string) (*models.Account, bool, error) {
	insert := `
		INSERT INTO accounts (account_id, balance, last_daily_claim)
		VALUES ($1, $2, 0)
		ON CONFLICT (account_id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, insert, accountID, r.defaultBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account %s: %w", accountID, err)
	}
	created := tag.RowsAffected() == 1

	query := `
		SELECT account_id, balance, last_daily_claim, created_at, updated_at
		FROM accounts
		WHERE account_id = $1
		FOR UPDATE
	`
	var account models.Account
	err = r.q.QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.Balance,
		&account.LastDailyClaim,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}

	return &account, created, nil
}

// UpdateBalance overwrites the balance, creating the account if needed
func (r *AccountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	query := `
		INSERT INTO accounts (account_id, balance, last_daily_claim)
		VALUES ($1, $2, 0)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, accountID, newBalance); err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	return nil
}

// UpdateLastDailyClaim overwrites the cooldown timestamp, creating the
// account with the default balance if needed
func (r *AccountRepository) UpdateLastDailyClaim(ctx context.Context, accountID string, claimedAt int64) error {
	query := `
		INSERT INTO accounts (account_id, balance, last_daily_claim)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET last_daily_claim = EXCLUDED.last_daily_claim, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, accountID, r.defaultBalance, claimedAt); err != nil {
		return fmt.Errorf("failed to update daily claim for account %s: %w", accountID, err)
	}
	return nil
}
