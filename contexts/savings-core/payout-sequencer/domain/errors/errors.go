package errors

import "errors"

var (
	ErrInvalidInput = errors.New("payout sequencing input is invalid")
	// ErrSlotConflict reports a lost uniqueness race on (pool_id, payout_slot);
	// callers re-read occupancy and retry.
	ErrSlotConflict = errors.New("payout slot already taken")
	// ErrSlotExhausted means no free slot exists at all. With membership
	// bounded by capacity this is unreachable, so it marks a violated
	// invariant elsewhere, not a routine outcome.
	ErrSlotExhausted = errors.New("no free payout slot available")
)
