package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state.
type Store interface {
	// ConsumeTokens takes tokens from the bucket at key, refilling it first.
	// A negative remaining count means the bucket could not cover the request
	// and nothing was taken.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config, now time.Time) (remaining int, resetAt time.Time, err error)

	// Reset clears the bucket at key.
	Reset(ctx context.Context, key string) error
}

// refill applies the elapsed refill intervals to a bucket snapshot and
// returns the new token count and refill mark.
func refill(tokens int, lastRefill, now time.Time, cfg Config) (int, time.Time) {
	elapsed := now.Sub(lastRefill)
	if elapsed < cfg.RefillInterval {
		return tokens, lastRefill
	}
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := min(int64(elapsed/cfg.RefillInterval), maxIntervals)
	tokens = min(tokens+int(intervals)*cfg.RefillRate, cfg.Capacity)
	if tokens == cfg.Capacity {
		// a full bucket restarts its refill clock
		return tokens, now
	}
	return tokens, lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
}
