package session

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// Session is one persisted token row. A row is created by a non-refresh
// issuance and rewritten in place on every refresh.
type Session struct {
	Token           string    `json:"-"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Agent           string    `json:"agent,omitempty"`
	IssuedAt        time.Time `json:"issued_at"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`

	// Owner is populated by Store.FindWithOwner only.
	Owner *Identity `json:"-"`
}

// New builds a session row for a freshly issued token.
func New(token string, owner uuid.UUID, agent string, now time.Time) *Session {
	return &Session{
		Token:           token,
		OwnerID:         owner,
		Agent:           agent,
		IssuedAt:        now,
		LastRefreshedAt: now,
	}
}

func (s *Session) validate() error {
	if s == nil || s.Token == "" || s.OwnerID == uuid.Nil {
		return ErrInvalidSession
	}
	return nil
}
