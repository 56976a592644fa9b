package session

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory storage.
// Owners are resolved through the OwnerLookup passed at construction.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	owners   OwnerLookup
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(owners OwnerLookup) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		owners:   owners,
	}
}

// Insert stores a new session row
func (m *MemoryStore) Insert(ctx context.Context, s *Session) error {
	if err := s.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.Token]; exists {
		return ErrDuplicateToken
	}

	row := *s
	row.Owner = nil
	m.sessions[s.Token] = &row
	return nil
}

// FindWithOwner returns the row for token joined with its owner
func (m *MemoryStore) FindWithOwner(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	row, exists := m.sessions[token]
	var found Session
	if exists {
		found = *row
	}
	m.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	owner, err := m.lookupOwner(ctx, found.OwnerID)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			// owner is gone, drop its rows the way a cascading FK would
			_ = m.DeleteAllForOwner(ctx, found.OwnerID)
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	found.Owner = &owner
	return &found, nil
}

// Rewrite replaces oldToken with newToken under a single write lock
func (m *MemoryStore) Rewrite(ctx context.Context, oldToken, newToken string, now time.Time) error {
	if newToken == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, exists := m.sessions[oldToken]
	if !exists {
		return ErrSessionNotFound
	}
	if _, taken := m.sessions[newToken]; taken {
		return ErrDuplicateToken
	}

	delete(m.sessions, oldToken)
	row.Token = newToken
	row.LastRefreshedAt = now
	m.sessions[newToken] = row
	return nil
}

// Delete removes a session by token
func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// DeleteAllForOwner removes all sessions for a specific user
func (m *MemoryStore) DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, row := range m.sessions {
		if row.OwnerID == ownerID {
			delete(m.sessions, token)
		}
	}
	return nil
}

// ListByOwner returns copies of the user's rows, most recently refreshed first
func (m *MemoryStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Session
	for _, row := range m.sessions {
		if row.OwnerID == ownerID {
			out = append(out, *row)
		}
	}
	slices.SortFunc(out, func(a, b Session) int {
		return cmp.Compare(b.LastRefreshedAt.UnixNano(), a.LastRefreshedAt.UnixNano())
	})
	return out, nil
}

// Len returns the number of stored rows
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) lookupOwner(ctx context.Context, id uuid.UUID) (Identity, error) {
	if m.owners == nil {
		return Identity{ID: id}, nil
	}
	return m.owners.LookupOwner(ctx, id)
}
