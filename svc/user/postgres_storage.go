package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mango/pkg/pg"
	"github.com/dmitrymomot/mango/pkg/session"
)

const (
	userColumns = `id, email, name, password_hash, role, avatar_url, avatar_key, created_at, updated_at`

	createUserQuery = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`

	updateUserQuery = `
		UPDATE users
		SET email = $2, name = $3, password_hash = $4, role = $5,
		    avatar_url = $6, avatar_key = $7, updated_at = $8
		WHERE id = $1`

	// session_tokens rows go with the user through ON DELETE CASCADE
	deleteUserQuery = `DELETE FROM users WHERE id = $1`

	lookupOwnerQuery = `SELECT id, email, role FROM users WHERE id = $1`
)

// PostgresStorage implements Storage on the users table.
type PostgresStorage struct {
	db pg.Querier
}

var _ Storage = (*PostgresStorage)(nil)

// NewPostgresStorage creates a user storage backed by PostgreSQL
func NewPostgresStorage(db pg.Querier) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (p *PostgresStorage) CreateUser(ctx context.Context, u *User) error {
	_, err := p.db.Exec(ctx, createUserQuery,
		u.ID, u.Email, u.Name, string(u.PasswordHash), u.Role,
		u.AvatarURL, u.AvatarKey, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	switch {
	case pg.IsDuplicateKeyError(err):
		return ErrEmailAlreadyExists
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return p.getOne(ctx, getUserByIDQuery, id)
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return p.getOne(ctx, getUserByEmailQuery, email)
}

func (p *PostgresStorage) ListUsers(ctx context.Context, offset, limit int) ([]User, error) {
	rows, err := p.db.Query(ctx, listUsersQuery, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (p *PostgresStorage) UpdateUser(ctx context.Context, u *User) error {
	tag, err := p.db.Exec(ctx, updateUserQuery,
		u.ID, u.Email, u.Name, string(u.PasswordHash), u.Role,
		u.AvatarURL, u.AvatarKey, u.UpdatedAt.UTC())
	switch {
	case pg.IsDuplicateKeyError(err):
		return ErrEmailAlreadyExists
	case err != nil:
		return fmt.Errorf("update user: %w", err)
	case tag.RowsAffected() == 0:
		return ErrUserNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, deleteUserQuery, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// LookupOwner resolves the session owner for a user id
func (p *PostgresStorage) LookupOwner(ctx context.Context, id uuid.UUID) (session.Identity, error) {
	var owner session.Identity
	err := p.db.QueryRow(ctx, lookupOwnerQuery, id).Scan(&owner.ID, &owner.Email, &owner.Role)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return session.Identity{}, fmt.Errorf("%w: %w", session.ErrOwnerNotFound, ErrUserNotFound)
		}
		return session.Identity{}, fmt.Errorf("lookup owner: %w", err)
	}
	return owner, nil
}

func (p *PostgresStorage) getOne(ctx context.Context, query string, arg any) (*User, error) {
	u, err := scanUser(p.db.QueryRow(ctx, query, arg))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u    User
		hash string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &hash, &u.Role,
		&u.AvatarURL, &u.AvatarKey, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PasswordHash = []byte(hash)
	return &u, nil
}
