package status

import "errors"

// The marketplace error taxonomy is closed: every fallible operation returns
// exactly one of these sentinels, and the kind itself is the whole signal
// surfaced to callers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSoldOut           = errors.New("sold out")
	ErrLimitExceeded     = errors.New("limit exceeded")
)
