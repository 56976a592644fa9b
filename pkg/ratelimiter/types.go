package ratelimiter

import (
	"fmt"
	"time"
)

// Store backends selectable through RATELIMIT_STORE.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // negative when the request was rejected
	ResetAt   time.Time // next refill
	now       time.Time
}

// Allowed reports whether the request fits in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next attempt, 0 if allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

// Config defines the token bucket and the backend it lives in.
type Config struct {
	Enabled        bool          `env:"RATELIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATELIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATELIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATELIMIT_REFILL_INTERVAL" envDefault:"30s"`
	Store          string        `env:"RATELIMIT_STORE" envDefault:"memory"`
	RedisPrefix    string        `env:"RATELIMIT_REDIS_PREFIX" envDefault:"mango:ratelimit:"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Capacity:       10,
		RefillRate:     1,
		RefillInterval: 30 * time.Second,
		Store:          StoreMemory,
		RedisPrefix:    "mango:ratelimit:",
	}
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}
