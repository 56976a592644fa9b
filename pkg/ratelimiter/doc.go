// Package ratelimiter throttles requests with a token bucket.
//
// A Bucket holds Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request takes one; an empty bucket rejects without
// taking anything. Bucket state lives in a Store: MemoryStore for a single
// instance, RedisStore when several replicas must share limits.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//
//	r.With(ratelimiter.Middleware(limiter,
//		ratelimiter.Composite(ratelimiter.ByIP, ratelimiter.ByPath),
//		ratelimiter.WithErrorResponder(mapper.Responder(log)),
//	)).Post("/auth/login", login)
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every checked response and Retry-After on rejections.
// Rejections reach the error responder as *LimitError, which matches
// ErrLimitExceeded under errors.Is.
package ratelimiter
