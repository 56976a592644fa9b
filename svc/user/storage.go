package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/pkg/session"
)

// Storage persists users. Implementations return ErrUserNotFound for
// unknown ids or emails and ErrEmailAlreadyExists on a duplicate email.
// LookupOwner must wrap session.ErrOwnerNotFound for unknown ids.
type Storage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	session.OwnerLookup
}
