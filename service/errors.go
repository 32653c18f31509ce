package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for precondition failures. The bot layer matches these
// with errors.Is and turns them into user-facing messages; they are never
// retried automatically.
var (
	ErrUnknownMember     = errors.New("member has no ledger entry")
	ErrUnknownGuild      = errors.New("guild has no ledger entry")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrWaifuNotFound     = errors.New("waifu not found")
	ErrNotOwned          = errors.New("waifu is not owned by this member")
	ErrAlreadyOwned      = errors.New("waifu is already owned in this guild")
	ErrAlreadyLocked     = errors.New("another operation is already in progress")
	ErrTierTooLow        = errors.New("member tier too low for this operation")
	ErrEmptyHarem        = errors.New("member owns no waifus in this guild")
)

// CooldownError reports a reward claimed before its interval elapsed
// together with the time remaining until the next claim.
type CooldownError struct {
	Kind      string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s reward on cooldown for another %s", e.Kind, e.Remaining.Round(time.Second))
}

// RollLimitError reports an exhausted roll quota together with the time
// remaining until the window resets.
type RollLimitError struct {
	ResetIn time.Duration
}

func (e *RollLimitError) Error() string {
	return fmt.Sprintf("roll limit exceeded, resets in %s", e.ResetIn.Round(time.Second))
}

// ExternalServiceError wraps a failure of an external collaborator such as
// the exchange partner. The operation it interrupted is failed-safe.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
