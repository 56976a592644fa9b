package session

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/mango/pkg/jwt"
)

// ErrorResponder writes an error response. The application passes its
// central error translator so status codes are decided in one place.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures the session middlewares.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	extractor     jwt.TokenExtractorFunc
	onError       ErrorResponder
	refreshHeader string
}

// WithExtractor sets the token extraction strategy (default: bearer header).
func WithExtractor(fn jwt.TokenExtractorFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.extractor = fn
		}
	}
}

// WithErrorResponder sets how rejected requests are answered.
func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

// WithRefreshHeader sets the response header carrying a refreshed token.
func WithRefreshHeader(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if name != "" {
			c.refreshHeader = name
		}
	}
}

func defaultErrorResponder(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// Authenticate rejects requests without a verifiable token. On success the
// identity, session row and effective token are attached to the request
// context, and a refreshed token is exposed through the refresh header.
func Authenticate(v *Verifier, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		extractor:     jwt.BearerTokenExtractor,
		onError:       defaultErrorResponder,
		refreshHeader: DefaultRefreshHeader,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.extractor(r)
			if err != nil {
				cfg.onError(w, r, errors.Join(ErrUnauthenticated, err))
				return
			}

			res, err := v.Verify(r.Context(), token)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}

			if res.Refreshed {
				w.Header().Set(cfg.refreshHeader, res.Token)
			}

			ctx := WithIdentity(r.Context(), res.Identity)
			ctx = WithSession(ctx, res.Session)
			ctx = jwt.SetToken(ctx, res.Token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientContext records the client user-agent on the request context so the
// Issuer can store it without it being threaded through every call.
func ClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithAgent(r.Context(), r.UserAgent())))
	})
}
