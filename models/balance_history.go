package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial      TransactionType = "initial"
	TransactionTypeDailyReward  TransactionType = "daily_reward"
	TransactionTypeCoinflipWin  TransactionType = "coinflip_win"
	TransactionTypeCoinflipLoss TransactionType = "coinflip_loss"
	TransactionTypeSlotsWin     TransactionType = "slots_win"
	TransactionTypeSlotsLoss    TransactionType = "slots_loss"
)

// IsWinType returns true if the transaction type represents a win
func (tt TransactionType) IsWinType() bool {
	return tt == TransactionTypeCoinflipWin || tt == TransactionTypeSlotsWin
}

// IsLossType returns true if the transaction type represents a loss
func (tt TransactionType) IsLossType() bool {
	return tt == TransactionTypeCoinflipLoss || tt == TransactionTypeSlotsLoss
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  string          `db:"id"`
	AccountID           string          `db:"account_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
