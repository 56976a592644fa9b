package user

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/pkg/session"
)

// MemoryStorage keeps users in process memory.
type MemoryStorage struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]User
	byEmail map[string]uuid.UUID
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory user storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:   make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func (m *MemoryStorage) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[emailKey(u.Email)]; exists {
		return ErrEmailAlreadyExists
	}
	m.users[u.ID] = cloneUser(u)
	m.byEmail[emailKey(u.Email)] = u.ID
	return nil
}

func (m *MemoryStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := cloneUser(&u)
	return &out, nil
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	id, ok := m.byEmail[emailKey(email)]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrUserNotFound
	}
	return m.GetUserByID(ctx, id)
}

// ListUsers returns users ordered by creation time
func (m *MemoryStorage) ListUsers(ctx context.Context, offset, limit int) ([]User, error) {
	m.mu.RLock()
	all := make([]User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, cloneUser(&u))
	}
	m.mu.RUnlock()

	slices.SortFunc(all, func(a, b User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	if offset >= len(all) {
		return []User{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *MemoryStorage) UpdateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.users[u.ID]
	if !ok {
		return ErrUserNotFound
	}
	if emailKey(prev.Email) != emailKey(u.Email) {
		if _, taken := m.byEmail[emailKey(u.Email)]; taken {
			return ErrEmailAlreadyExists
		}
		delete(m.byEmail, emailKey(prev.Email))
		m.byEmail[emailKey(u.Email)] = u.ID
	}
	m.users[u.ID] = cloneUser(u)
	return nil
}

func (m *MemoryStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.byEmail, emailKey(u.Email))
	delete(m.users, id)
	return nil
}

// LookupOwner resolves the session owner for a user id
func (m *MemoryStorage) LookupOwner(ctx context.Context, id uuid.UUID) (session.Identity, error) {
	u, err := m.GetUserByID(ctx, id)
	if err != nil {
		return session.Identity{}, fmt.Errorf("%w: %w", session.ErrOwnerNotFound, err)
	}
	return u.Identity(), nil
}

func cloneUser(u *User) User {
	out := *u
	out.PasswordHash = slices.Clone(u.PasswordHash)
	return out
}
