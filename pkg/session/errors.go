package session

import "errors"

var (
	// ErrUnauthenticated indicates the request carried no usable bearer token
	ErrUnauthenticated = errors.New("session.unauthenticated")

	// ErrMalformedToken indicates a bad signature or an unexpected payload shape
	ErrMalformedToken = errors.New("session.invalid_token")

	// ErrTokenExpired indicates the token expired outside the refresh grace window
	ErrTokenExpired = errors.New("session.token_expired")

	// ErrTokenNoLongerValid indicates the token has no session row, either
	// because it was refreshed by a concurrent request or revoked
	ErrTokenNoLongerValid = errors.New("session.token_no_longer_valid")

	// ErrSessionNotFound indicates no session row matches the token
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrInvalidSession indicates a session row is missing required fields
	ErrInvalidSession = errors.New("session.invalid")

	// ErrDuplicateToken indicates a session row with the same token already exists
	ErrDuplicateToken = errors.New("session.duplicate_token")

	// ErrTokenGeneration indicates token signing failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrOwnerNotFound is returned by OwnerLookup implementations for unknown users
	ErrOwnerNotFound = errors.New("session.owner_not_found")

	// ErrNoStore indicates a component was built without a store
	ErrNoStore = errors.New("session.no_store")
)
