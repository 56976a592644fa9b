package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for session token persistence
type Store interface {
	// Insert stores a new session row
	Insert(ctx context.Context, s *Session) error

	// FindWithOwner returns the row for token joined with its owner.
	// Returns ErrSessionNotFound when no row matches.
	FindWithOwner(ctx context.Context, token string) (*Session, error)

	// Rewrite atomically replaces oldToken with newToken on the existing row
	// and sets LastRefreshedAt. Returns ErrSessionNotFound when no row holds
	// oldToken, which is what a concurrent refresh loser observes.
	Rewrite(ctx context.Context, oldToken, newToken string, now time.Time) error

	// Delete removes a single session row
	Delete(ctx context.Context, token string) error

	// DeleteAllForOwner removes every session row of a user
	DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) error

	// ListByOwner returns the active session rows of a user, newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Session, error)
}

// OwnerLookup resolves a session owner for stores that do not keep users
// next to session rows.
type OwnerLookup interface {
	LookupOwner(ctx context.Context, id uuid.UUID) (Identity, error)
}

// OwnerLookupFunc adapts a function to OwnerLookup.
type OwnerLookupFunc func(ctx context.Context, id uuid.UUID) (Identity, error)

// LookupOwner implements OwnerLookup.
func (f OwnerLookupFunc) LookupOwner(ctx context.Context, id uuid.UUID) (Identity, error) {
	return f(ctx, id)
}
