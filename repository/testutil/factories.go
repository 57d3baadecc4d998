package testutil

import (
	"time"

	"casinobot/models"
)

// CreateTestAccount creates an account with the default starting balance
func CreateTestAccount(accountID string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:        accountID,
		Balance:   1000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific balance
func CreateTestAccountWithBalance(accountID string, balance int64) *models.Account {
	account := CreateTestAccount(accountID)
	account.Balance = balance
	return account
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(accountID string, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestBalanceHistoryWithAmounts creates a test balance history with specific amounts
func CreateTestBalanceHistoryWithAmounts(accountID string, before, after int64, transactionType models.TransactionType) *models.BalanceHistory {
	history := CreateTestBalanceHistory(accountID, transactionType)
	history.BalanceBefore = before
	history.BalanceAfter = after
	history.ChangeAmount = after - before
	return history
}
