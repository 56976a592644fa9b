package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter.invalid_config")
	ErrInvalidTokenCount = errors.New("ratelimiter.invalid_token_count")
	ErrStoreUnavailable  = errors.New("ratelimiter.store_unavailable")

	// ErrLimitExceeded is passed to the error responder when a request is
	// rejected. The concrete error also carries the retry delay.
	ErrLimitExceeded = errors.New("ratelimiter.limit_exceeded")
)

// LimitError reports a rejected request.
type LimitError struct {
	Key        string
	RetryAfter int // seconds
}

func (e *LimitError) Error() string { return ErrLimitExceeded.Error() }

func (e *LimitError) Is(target error) bool { return target == ErrLimitExceeded }
