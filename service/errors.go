package service

import (
	"errors"
	"fmt"
)

// Reason names why a command did not succeed
type Reason string

const (
	ReasonInvalidBet     Reason = "invalid_bet"
	ReasonInvalidChoice  Reason = "invalid_choice"
	ReasonNotEligibleYet Reason = "not_eligible_yet"
	ReasonStorageError   Reason = "storage_error"
)

// CommandError is the only error type the casino service returns
type CommandError struct {
	Reason           Reason
	SecondsRemaining int64 // set for not_eligible_yet
	Err              error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Reason == ReasonNotEligibleYet {
		return fmt.Sprintf("%s: %ds remaining", e.Reason, e.SecondsRemaining)
	}
	return string(e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason. Errors that are not a CommandError
// count as storage errors; nil has no reason.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Reason
	}
	return ReasonStorageError
}

func invalidBet() error {
	return &CommandError{Reason: ReasonInvalidBet}
}

func storageError(err error) error {
	return &CommandError{Reason: ReasonStorageError, Err: err}
}
