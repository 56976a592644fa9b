// Package session implements the lifecycle of JWT-backed login sessions.
//
// Every non-refresh issuance (login, registration, credential change) signs a
// token and inserts one row into a Store. Each request goes through a
// Verifier, which moves the presented token into exactly one state:
//
//	UNVERIFIED -> VALID                 signature ok, user payload, row exists
//	UNVERIFIED -> MALFORMED             bad signature or payload (ErrMalformedToken)
//	UNVERIFIED -> EXPIRED_WITHIN_GRACE  row rewritten to a fresh token
//	UNVERIFIED -> EXPIRED_BEYOND_GRACE  rejected (ErrTokenExpired)
//
// A refresh never creates a row: Store.Rewrite swaps the token value on the
// existing row in one atomic operation keyed by the old value. When two
// requests refresh the same token concurrently only one rewrite matches, the
// other observes ErrTokenNoLongerValid.
//
// Revocation deletes rows. A token whose row is gone fails verification even
// while its signature is still valid.
//
// # Stores
//
//   - MemoryStore: mutex guarded map, for tests and single-process development
//   - PostgresStore: session_tokens table joined to users
//   - RedisStore: one hash per token plus an owner set, rewrite via Lua script,
//     revoke under WATCH on the owner set; keys share one hash tag so the
//     store works on cluster clients
//
// # HTTP
//
//	r.Use(session.ClientContext)
//	r.Use(session.Authenticate(verifier,
//		session.WithErrorResponder(errorResponder),
//		session.WithRefreshHeader("X-Auth-Token"),
//	))
//
// Handlers read the principal with IdentityFromContext.
package session
