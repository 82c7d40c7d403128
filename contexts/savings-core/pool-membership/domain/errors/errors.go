package errors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid membership input")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyKeyConflict = errors.New("idempotency key conflict")
	ErrPoolNotFound           = errors.New("pool not found")
	ErrPoolNotJoinable        = errors.New("pool is not accepting members")
	ErrPoolFull               = errors.New("pool is full")
	ErrAlreadyMember          = errors.New("user is already a pool member")
	ErrTierNotEligible        = errors.New("user tier not eligible for pool amount")
	ErrMembershipNotFound     = errors.New("membership not found")
	ErrOutboxConflict         = errors.New("outbox message conflict")
)
