package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/mango/pkg/logger"
	"github.com/dmitrymomot/mango/pkg/rbac"
	"github.com/dmitrymomot/mango/pkg/sanitizer"
	"github.com/dmitrymomot/mango/pkg/session"
	"github.com/dmitrymomot/mango/pkg/storage"
	"github.com/dmitrymomot/mango/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	maxNameLength   = 100
)

// Service manages accounts and the sessions bound to them.
type Service struct {
	users    Storage
	issuer   *session.Issuer
	sessions session.Store
	files    storage.Storage
	roles    rbac.Authorizer

	logger           *slog.Logger
	bcryptCost       int
	passwordStrength validator.PasswordStrengthConfig
	now              func() time.Time
}

// Option configures the service during construction.
type Option func(*Service)

// WithLogger configures the logger for the user service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.logger = log
	}
}

// WithBcryptCost configures the bcrypt cost parameter for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithPasswordStrength configures password strength requirements.
func WithPasswordStrength(config validator.PasswordStrengthConfig) Option {
	return func(s *Service) {
		s.passwordStrength = config
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the user service. files may be nil when avatar uploads
// are disabled.
func NewService(
	users Storage,
	issuer *session.Issuer,
	sessions session.Store,
	files storage.Storage,
	roles rbac.Authorizer,
	opts ...Option,
) *Service {
	s := &Service{
		users:            users,
		issuer:           issuer,
		sessions:         sessions,
		files:            files,
		roles:            roles,
		logger:           slog.New(slog.DiscardHandler),
		bcryptCost:       bcrypt.DefaultCost,
		passwordStrength: validator.DefaultPasswordStrength(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with the default role and opens its first session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	email := sanitizer.NormalizeEmail(in.Email)
	name := sanitizer.DisplayName(in.Name)

	if err := validator.Apply(
		validator.ValidEmail("email", email),
		validator.Required("name", name),
		validator.MaxLen("name", name, maxNameLength),
		validator.StrongPassword("password", in.Password, s.passwordStrength),
		validator.NotCommonPassword("password", in.Password),
	); err != nil {
		return nil, "", err
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	u := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issuer.Issue(ctx, u.Identity(), false)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.Component("user"),
		logger.Event("registered"),
		logger.UserID(u.ID.String()),
	)
	return u, token, nil
}

// Login checks credentials and opens a new session. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = sanitizer.NormalizeEmail(email)

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, "", fmt.Errorf("failed to get user: %w", err)
		}
		s.logFailedLogin(ctx, email)
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		s.logFailedLogin(ctx, email)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(ctx, u.Identity(), false)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return u, token, nil
}

// Logout removes the session row of token. Other sessions stay open.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns the open sessions of a user.
func (s *Service) ListSessions(ctx context.Context, id uuid.UUID) ([]session.Session, error) {
	list, err := s.sessions.ListByOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return list, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetUserByID(ctx, id)
}

// ListUsers pages through all users. A non-positive limit selects
// DefaultPageSize, larger limits are capped at MaxPageSize.
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]User, error) {
	offset = max(offset, 0)
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return s.users.ListUsers(ctx, offset, limit)
}

// UpdateProfile changes the display name.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	name = sanitizer.DisplayName(name)
	if err := validator.Apply(
		validator.Required("name", name),
		validator.MaxLen("name", name, maxNameLength),
	); err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = name
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password, closes every session of the user and
// returns a token for a fresh one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) (string, error) {
	if err := validator.Apply(
		validator.Required("current_password", current),
		validator.StrongPassword("new_password", next, s.passwordStrength),
		validator.NotCommonPassword("new_password", next),
		validator.NotEqual("new_password", next, current),
	); err != nil {
		return "", err
	}

	u, err := s.authenticate(ctx, id, current)
	if err != nil {
		return "", err
	}

	hash, err := s.hash(next)
	if err != nil {
		return "", err
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	return s.restartSessions(ctx, u, "password_changed")
}

// ChangeEmail replaces the email after confirming the password, closes every
// session of the user and returns a token for a fresh one.
func (s *Service) ChangeEmail(ctx context.Context, id uuid.UUID, password, newEmail string) (string, error) {
	newEmail = sanitizer.NormalizeEmail(newEmail)
	if err := validator.Apply(
		validator.Required("password", password),
		validator.ValidEmail("email", newEmail),
	); err != nil {
		return "", err
	}

	u, err := s.authenticate(ctx, id, password)
	if err != nil {
		return "", err
	}
	if u.Email == newEmail {
		return "", ErrEmailUnchanged
	}

	existing, err := s.users.GetUserByEmail(ctx, newEmail)
	if err == nil && existing.ID != u.ID {
		return "", ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("failed to check email availability: %w", err)
	}

	u.Email = newEmail
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("failed to update email: %w", err)
	}

	return s.restartSessions(ctx, u, "email_changed")
}

// ChangeRole assigns a role from the weight table and closes the target's
// sessions so the next request re-reads the role. When ctx carries the
// caller's admitted role, the caller may neither grant a role heavier than
// its own nor touch an account that outweighs it.
func (s *Service) ChangeRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if err := s.roles.VerifyRole(role); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor, ok := rbac.RoleFromContext(ctx); ok {
		ceiling := s.roles.Weight(actor)
		if s.roles.Weight(role) > ceiling || s.roles.Weight(u.Role) > ceiling {
			return nil, fmt.Errorf("%w: %q may not assign %q to a %q", ErrRoleAboveActor, actor, role, u.Role)
		}
	}
	if u.Role == role {
		return u, nil
	}

	u.Role = role
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	if err := s.sessions.DeleteAllForOwner(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.logger.InfoContext(ctx, "user role changed",
		logger.Component("user"),
		logger.Event("role_changed"),
		logger.UserID(u.ID.String()),
		logger.Role(role),
	)
	return u, nil
}

// DeleteUser removes the account with its sessions and avatar.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteAllForOwner(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.removeObject(ctx, u.AvatarKey)

	s.logger.InfoContext(ctx, "user deleted",
		logger.Component("user"),
		logger.Event("deleted"),
		logger.UserID(id.String()),
	)
	return nil
}

func (s *Service) authenticate(ctx context.Context, id uuid.UUID, password string) (*User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) restartSessions(ctx context.Context, u *User, event string) (string, error) {
	if err := s.sessions.DeleteAllForOwner(ctx, u.ID); err != nil {
		return "", fmt.Errorf("failed to revoke sessions: %w", err)
	}

	token, err := s.issuer.Issue(ctx, u.Identity(), false)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user credentials changed",
		logger.Component("user"),
		logger.Event(event),
		logger.UserID(u.ID.String()),
	)
	return token, nil
}

func (s *Service) hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *Service) logFailedLogin(ctx context.Context, email string) {
	s.logger.WarnContext(ctx, "login failed",
		logger.Component("user"),
		logger.Event("login_failed"),
		slog.String("email", sanitizer.MaskEmail(email)),
	)
}
