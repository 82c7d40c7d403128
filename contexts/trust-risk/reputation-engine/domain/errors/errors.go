package errors

import "errors"

var (
	ErrInvalidUserID      = errors.New("reputation user id is invalid")
	ErrUnknownTier        = errors.New("reputation tier is unknown")
	ErrMembershipNotFound = errors.New("pool membership not found for user")
)
