package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mango/pkg/jwt"
	"github.com/dmitrymomot/mango/pkg/logger"
	"github.com/dmitrymomot/mango/pkg/requestid"
)

// Issuer mints signed tokens and records non-refresh issuances in the store.
type Issuer struct {
	signer *jwt.Service
	store  Store
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithIssuerClock overrides the time source used for iat/exp and issued_at.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithIssuerLogger sets the logger used for issuance events.
func WithIssuerLogger(log *slog.Logger) IssuerOption {
	return func(i *Issuer) {
		if log != nil {
			i.log = log
		}
	}
}

// NewIssuer creates an Issuer that signs tokens valid for ttl.
func NewIssuer(signer *jwt.Service, store Store, ttl time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		signer: signer,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for user. For a non-refresh issuance it also inserts a
// session row carrying the client agent found in ctx. A refresh issuance only
// signs, the caller rewrites the existing row.
func (i *Issuer) Issue(ctx context.Context, user Identity, isRefresh bool) (string, error) {
	now := i.now()

	token, err := i.signer.Generate(newClaims(user, now, i.ttl))
	if err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}

	if isRefresh {
		return token, nil
	}

	if i.store == nil {
		return "", ErrNoStore
	}
	if err := i.store.Insert(ctx, New(token, user.ID, AgentFromContext(ctx), now)); err != nil {
		return "", err
	}

	i.log.DebugContext(ctx, "session token issued",
		logger.Component("session"),
		logger.Event("token_issued"),
		logger.UserID(user.ID.String()),
		logger.RequestID(requestid.FromContext(ctx)),
	)

	return token, nil
}
