package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/ratelimiter"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newBucket(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.Bucket, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	b, err := ratelimiter.NewBucket(store, cfg, ratelimiter.WithClock(clock.now))
	require.NoError(t, err)
	return b, clock
}

func testConfig() ratelimiter.Config {
	cfg := ratelimiter.DefaultConfig()
	cfg.Capacity = 3
	cfg.RefillRate = 1
	cfg.RefillInterval = 10 * time.Second
	return cfg
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	tests := []struct {
		name   string
		mutate func(*ratelimiter.Config)
	}{
		{"zero capacity", func(c *ratelimiter.Config) { c.Capacity = 0 }},
		{"negative rate", func(c *ratelimiter.Config) { c.RefillRate = -1 }},
		{"zero interval", func(c *ratelimiter.Config) { c.RefillInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := ratelimiter.NewBucket(store, cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}

	_, err := ratelimiter.NewBucket(nil, testConfig())
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestBucket_BurstThenReject(t *testing.T) {
	t.Parallel()

	b, clock := newBucket(t, testConfig())
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, want, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 10*time.Second, res.RetryAfter())

	clock.advance(4 * time.Second)
	res, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 6*time.Second, res.RetryAfter())

	// rejected attempts took nothing, so one refill is enough
	clock.advance(6 * time.Second)
	res, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)
}

func TestBucket_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	b, _ := newBucket(t, testConfig())
	ctx := context.Background()

	_, err := b.AllowN(ctx, "a", 3)
	require.NoError(t, err)

	res, err := b.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	res, err = b.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucket_RefillCapsAtCapacity(t *testing.T) {
	t.Parallel()

	b, clock := newBucket(t, testConfig())
	ctx := context.Background()

	_, err := b.AllowN(ctx, "k", 3)
	require.NoError(t, err)

	clock.advance(time.Hour)
	res, err := b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining)
}

func TestBucket_StatusAndReset(t *testing.T) {
	t.Parallel()

	b, _ := newBucket(t, testConfig())
	ctx := context.Background()

	_, err := b.AllowN(ctx, "k", 2)
	require.NoError(t, err)

	res, err := b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)

	res, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining, "status must not consume")

	require.NoError(t, b.Reset(ctx, "k"))
	res, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining)
}

func TestBucket_AllowN_InvalidCount(t *testing.T) {
	t.Parallel()

	b, _ := newBucket(t, testConfig())
	_, err := b.AllowN(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithCleanupInterval(0),
		ratelimiter.WithStaleAfter(time.Minute),
	)
	t.Cleanup(store.Close)

	now := time.Now()
	_, _, err := store.ConsumeTokens(context.Background(), "old", 1, testConfig(), now.Add(-2*time.Minute))
	require.NoError(t, err)
	_, _, err = store.ConsumeTokens(context.Background(), "new", 1, testConfig(), now)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	store.Sweep(now)
	assert.Equal(t, 1, store.Len())

	store.Close()
	store.Close()
}
