package models

// BalanceResult is returned by the balance command
type BalanceResult struct {
	AccountID string
	Balance   int64
}

// DailyResult represents a granted daily reward
type DailyResult struct {
	Amount     int64
	NewBalance int64
	ClaimedAt  int64
}

// CoinflipResult represents the outcome of a coinflip (returned to the user)
type CoinflipResult struct {
	Bet        int64
	Choice     string
	Outcome    string
	Won        bool
	Delta      int64
	NewBalance int64
}

// SlotsResult represents the outcome of a slot machine spin (returned to the user)
type SlotsResult struct {
	Bet        int64
	Reels      [3]string
	Multiplier int64
	Delta      int64
	NewBalance int64
}
