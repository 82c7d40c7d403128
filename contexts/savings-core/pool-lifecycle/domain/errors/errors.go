package errors

import "errors"

var (
	ErrInvalidPoolID = errors.New("pool id is invalid")
	ErrPoolNotFound  = errors.New("pool not found")
	ErrStatusChanged = errors.New("pool status changed concurrently")
)
