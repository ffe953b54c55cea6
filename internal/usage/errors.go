package usage

import "errors"

var (
	// ErrLimitReached indicates the user exhausted their lifetime analysis quota.
	ErrLimitReached = errors.New("limit reached")
	// ErrNotFound indicates the requested record does not exist for the user.
	ErrNotFound = errors.New("record not found")
)
