package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/pkg/rbac"
	"github.com/dmitrymomot/mango/pkg/session"
)

// DefaultRole is assigned on registration.
const DefaultRole = rbac.RoleUser

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	AvatarKey    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the principal carried in session tokens.
func (u *User) Identity() session.Identity {
	return session.Identity{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}

// RegisterInput holds the fields accepted on sign-up.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}
