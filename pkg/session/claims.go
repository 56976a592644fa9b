package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/pkg/jwt"
)

// Claims is the token payload: { "user": { "id", "email" }, exp, iat, jti }.
type Claims struct {
	User *ClaimsUser `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsUser is the identity encoded into a token.
type ClaimsUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func newClaims(user Identity, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		User: &ClaimsUser{
			ID:    user.ID.String(),
			Email: user.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// identity returns the decoded user, or ErrMalformedToken when the payload
// has no usable user field.
func (c *Claims) identity() (Identity, error) {
	if c == nil || c.User == nil || c.User.ID == "" {
		return Identity{}, ErrMalformedToken
	}
	id, err := uuid.Parse(c.User.ID)
	if err != nil {
		return Identity{}, ErrMalformedToken
	}
	return Identity{ID: id, Email: c.User.Email}, nil
}
