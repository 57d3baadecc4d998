package models

import (
	"time"
)

// Account is a per-user chip ledger record
type Account struct {
	ID             string    `db:"account_id"`
	Balance        int64     `db:"balance"`
	LastDailyClaim int64     `db:"last_daily_claim"` // Unix seconds, 0 means never claimed
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// HasClaimedDaily reports whether the account ever claimed a daily reward
func (a *Account) HasClaimedDaily() bool {
	return a.LastDailyClaim > 0
}

// CalculateNewBalance calculates what the balance would be after a change
func (a *Account) CalculateNewBalance(changeAmount int64) int64 {
	return a.Balance + changeAmount
}
