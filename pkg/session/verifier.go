package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mango/pkg/jwt"
	"github.com/dmitrymomot/mango/pkg/logger"
)

// State is the outcome of verifying one token.
type State int

const (
	StateUnverified State = iota
	StateValid
	StateMalformed
	StateExpiredWithinGrace
	StateExpiredBeyondGrace
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateMalformed:
		return "malformed"
	case StateExpiredWithinGrace:
		return "expired_within_grace"
	case StateExpiredBeyondGrace:
		return "expired_beyond_grace"
	default:
		return "unverified"
	}
}

// Result describes a request that made it past verification.
type Result struct {
	State    State
	Identity Identity
	Session  *Session

	// Token is the token the client should use from now on. It differs from
	// the presented token only after a refresh.
	Token     string
	Refreshed bool
}

// Verifier checks presented tokens against the signer and the store, and
// exchanges tokens that expired within the grace window.
type Verifier struct {
	signer *jwt.Service
	store  Store
	issuer *Issuer
	grace  time.Duration
	now    func() time.Time
	log    *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock overrides the time source used for grace computations.
// The signer should share the same clock.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// WithVerifierLogger sets the logger used for refresh events.
func WithVerifierLogger(log *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if log != nil {
			v.log = log
		}
	}
}

// NewVerifier creates a Verifier. grace is the refresh window after expiry.
func NewVerifier(signer *jwt.Service, store Store, issuer *Issuer, grace time.Duration, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		signer: signer,
		store:  store,
		issuer: issuer,
		grace:  grace,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs the token state machine once.
//
//   - valid signature with a user payload and a live row: StateValid
//   - bad signature or payload: ErrMalformedToken
//   - expired no more than grace ago: the row is rewritten to a fresh token
//   - expired longer ago: ErrTokenExpired
//
// A token without a session row fails with ErrTokenNoLongerValid even if its
// signature is still good, which is how revocation takes effect.
func (v *Verifier) Verify(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	var claims Claims
	err := v.signer.Parse(token, &claims)
	switch {
	case err == nil:
		return v.valid(ctx, token, &claims)
	case errors.Is(err, jwt.ErrExpiredToken):
		return v.expired(ctx, token, &claims)
	default:
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}

func (v *Verifier) valid(ctx context.Context, token string, claims *Claims) (*Result, error) {
	id, err := claims.identity()
	if err != nil {
		return nil, err
	}

	s, err := v.findWithOwner(ctx, token)
	if err != nil {
		return nil, err
	}

	return &Result{
		State:    StateValid,
		Identity: withOwner(id, s),
		Session:  s,
		Token:    token,
	}, nil
}

func (v *Verifier) expired(ctx context.Context, token string, claims *Claims) (*Result, error) {
	id, err := claims.identity()
	if err != nil {
		return nil, err
	}

	exp, err := jwt.ExpiresAt(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	now := v.now()
	if now.Sub(exp) > v.grace {
		return nil, ErrTokenExpired
	}

	s, err := v.findWithOwner(ctx, token)
	if err != nil {
		return nil, err
	}

	owner := withOwner(id, s)
	fresh, err := v.issuer.Issue(ctx, owner, true)
	if err != nil {
		return nil, err
	}

	if err := v.store.Rewrite(ctx, token, fresh, now); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			v.log.WarnContext(ctx, "concurrent refresh lost",
				logger.Component("session"),
				logger.Event("refresh_race_lost"),
				logger.UserID(id.ID.String()),
			)
			return nil, ErrTokenNoLongerValid
		}
		return nil, err
	}

	v.log.InfoContext(ctx, "session token refreshed",
		logger.Component("session"),
		logger.Event("token_refreshed"),
		logger.UserID(id.ID.String()),
		slog.Duration("expired_for", now.Sub(exp)),
	)

	s.Token = fresh
	s.LastRefreshedAt = now

	return &Result{
		State:     StateExpiredWithinGrace,
		Identity:  owner,
		Session:   s,
		Token:     fresh,
		Refreshed: true,
	}, nil
}

func (v *Verifier) findWithOwner(ctx context.Context, token string) (*Session, error) {
	if v.store == nil {
		return nil, ErrNoStore
	}
	s, err := v.store.FindWithOwner(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrTokenNoLongerValid
		}
		return nil, err
	}
	return s, nil
}

// withOwner keeps the decoded id and email and takes the role from the
// owner row, so role changes apply without reissuing tokens.
func withOwner(id Identity, s *Session) Identity {
	if s != nil && s.Owner != nil {
		id.Role = s.Owner.Role
	}
	return id
}
