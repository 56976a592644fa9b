package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/pkg/pg"
)

const (
	insertSessionQuery = `
		INSERT INTO session_tokens (token, owner_id, agent, issued_at, last_refreshed_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)`

	findWithOwnerQuery = `
		SELECT s.token, s.owner_id, COALESCE(s.agent, ''), s.issued_at, s.last_refreshed_at,
		       u.email, u.role
		FROM session_tokens s
		JOIN users u ON u.id = s.owner_id
		WHERE s.token = $1`

	// single statement keyed by the old value, concurrent refreshes race on the row lock
	rewriteSessionQuery = `
		UPDATE session_tokens
		SET token = $2, last_refreshed_at = $3
		WHERE token = $1`

	deleteSessionQuery       = `DELETE FROM session_tokens WHERE token = $1`
	deleteOwnerSessionsQuery = `DELETE FROM session_tokens WHERE owner_id = $1`
	listOwnerSessionsQuery   = `
		SELECT token, owner_id, COALESCE(agent, ''), issued_at, last_refreshed_at
		FROM session_tokens
		WHERE owner_id = $1
		ORDER BY last_refreshed_at DESC`
)

// PostgresStore implements Store on the session_tokens table.
// Owners are joined from the users table, rows cascade with their user.
type PostgresStore struct {
	db pg.Querier
}

// NewPostgresStore creates a session store backed by PostgreSQL
func NewPostgresStore(db pg.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert stores a new session row
func (p *PostgresStore) Insert(ctx context.Context, s *Session) error {
	if err := s.validate(); err != nil {
		return err
	}

	_, err := p.db.Exec(ctx, insertSessionQuery,
		s.Token, s.OwnerID, s.Agent, s.IssuedAt.UTC(), s.LastRefreshedAt.UTC())
	switch {
	case pg.IsDuplicateKeyError(err):
		return ErrDuplicateToken
	case pg.IsForeignKeyViolationError(err):
		return ErrOwnerNotFound
	case err != nil:
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindWithOwner returns the row for token joined with its owner
func (p *PostgresStore) FindWithOwner(ctx context.Context, token string) (*Session, error) {
	var (
		s     Session
		owner Identity
	)
	err := p.db.QueryRow(ctx, findWithOwnerQuery, token).Scan(
		&s.Token, &s.OwnerID, &s.Agent, &s.IssuedAt, &s.LastRefreshedAt,
		&owner.Email, &owner.Role,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	owner.ID = s.OwnerID
	s.Owner = &owner
	return &s, nil
}

// Rewrite replaces oldToken with newToken in one UPDATE statement
func (p *PostgresStore) Rewrite(ctx context.Context, oldToken, newToken string, now time.Time) error {
	if newToken == "" {
		return ErrInvalidSession
	}

	tag, err := p.db.Exec(ctx, rewriteSessionQuery, oldToken, newToken, now.UTC())
	switch {
	case pg.IsDuplicateKeyError(err):
		return ErrDuplicateToken
	case err != nil:
		return fmt.Errorf("rewrite session: %w", err)
	case tag.RowsAffected() == 0:
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session by token
func (p *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := p.db.Exec(ctx, deleteSessionQuery, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAllForOwner removes all sessions for a specific user
func (p *PostgresStore) DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := p.db.Exec(ctx, deleteOwnerSessionsQuery, ownerID); err != nil {
		return fmt.Errorf("delete owner sessions: %w", err)
	}
	return nil
}

// ListByOwner returns the user's rows, most recently refreshed first
func (p *PostgresStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Session, error) {
	rows, err := p.db.Query(ctx, listOwnerSessionsQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.Token, &s.OwnerID, &s.Agent, &s.IssuedAt, &s.LastRefreshedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list owner sessions: %w", err)
	}
	return out, nil
}
