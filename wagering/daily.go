package wagering

import "time"

// DailyPolicy configures the daily reward
type DailyPolicy struct {
	CooldownSeconds int64
	RewardAmount    int64
}

// DefaultDailyPolicy grants 300 chips once every 24 hours
var DefaultDailyPolicy = DailyPolicy{
	CooldownSeconds: int64((24 * time.Hour) / time.Second),
	RewardAmount:    300,
}

// DailyOutcome is either eligible with an amount or ineligible with the exact
// number of seconds left to wait.
type DailyOutcome struct {
	Eligible         bool
	Amount           int64
	SecondsRemaining int64
}

// DailyReward decides whether a claim at now (Unix seconds) is allowed
func DailyReward(now, lastClaim int64, policy DailyPolicy) DailyOutcome {
	elapsed := now - lastClaim
	if elapsed >= policy.CooldownSeconds {
		return DailyOutcome{Eligible: true, Amount: policy.RewardAmount}
	}
	return DailyOutcome{SecondsRemaining: policy.CooldownSeconds - elapsed}
}
