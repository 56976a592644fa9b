package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/jwt"
	"github.com/dmitrymomot/mango/pkg/session"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	type seen struct {
		identity session.Identity
		token    string
	}

	setup := func(t *testing.T) (*fixture, http.Handler, *error, *seen) {
		f := newFixture(t)
		var (
			gotErr error
			got    seen
		)
		mw := session.Authenticate(f.verifier,
			session.WithErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
				gotErr = err
				w.WriteHeader(http.StatusTeapot)
			}),
		)
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got.identity, _ = session.IdentityFromContext(r.Context())
			got.token, _ = jwt.GetToken(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		return f, h, &gotErr, &got
	}

	t.Run("missing header", func(t *testing.T) {
		_, h, gotErr, _ := setup(t)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.ErrorIs(t, *gotErr, session.ErrUnauthenticated)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, h, gotErr, _ := setup(t)
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Token abc")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.ErrorIs(t, *gotErr, session.ErrUnauthenticated)
	})

	t.Run("valid token", func(t *testing.T) {
		f, h, gotErr, got := setup(t)
		token, err := f.issuer.Issue(context.Background(), f.user, false)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.NoError(t, *gotErr)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(session.DefaultRefreshHeader))
		assert.Equal(t, f.user.ID, got.identity.ID)
		assert.Equal(t, token, got.token)
	})

	t.Run("refresh sets header", func(t *testing.T) {
		f, h, gotErr, got := setup(t)
		token, err := f.issuer.Issue(context.Background(), f.user, false)
		require.NoError(t, err)
		f.clock.Advance(testTTL + 24*time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.NoError(t, *gotErr)
		assert.Equal(t, http.StatusOK, rec.Code)
		fresh := rec.Header().Get(session.DefaultRefreshHeader)
		require.NotEmpty(t, fresh)
		assert.NotEqual(t, token, fresh)
		assert.Equal(t, fresh, got.token)
		assert.Equal(t, f.user.Email, got.identity.Email)
	})

	t.Run("expired beyond grace", func(t *testing.T) {
		f, h, gotErr, _ := setup(t)
		token, err := f.issuer.Issue(context.Background(), f.user, false)
		require.NoError(t, err)
		f.clock.Advance(testTTL + testGrace + time.Second)

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.True(t, errors.Is(*gotErr, session.ErrTokenExpired))
		assert.Empty(t, rec.Header().Get(session.DefaultRefreshHeader))
	})
}

func TestAuthenticate_DefaultResponder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	h := session.Authenticate(f.verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientContext(t *testing.T) {
	t.Parallel()

	var agent string
	h := session.ClientContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = session.AgentFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("User-Agent", "mango-cli/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "mango-cli/1.0", agent)
	assert.Empty(t, session.AgentFromContext(context.Background()))
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	assert.Equal(t, 7*24*time.Hour, cfg.Grace())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL("production"))
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL("staging"))
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL("development"))
	assert.Less(t, cfg.TokenTTL("production"), cfg.TokenTTL("development"))
}
