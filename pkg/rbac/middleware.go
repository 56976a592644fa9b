package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mango/pkg/logger"
)

// MiddlewareConfig configures the authorization middleware.
type MiddlewareConfig struct {
	Authorizer Authorizer
	Routes     RouteTable

	// Route resolves the matched route pattern. Defaults to r.URL.Path.
	Route RouteFunc

	// Role resolves the principal's role. Defaults to RoleFromContext.
	Role RoleFunc

	// OnError writes rejections. Defaults to plain 403/401 responses.
	OnError ErrorResponder

	Logger *slog.Logger
}

// Middleware evaluates the route table for every request. Denials carry the
// path, method and role in a *DeniedError.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Route == nil {
		cfg.Route = func(r *http.Request) string { return r.URL.Path }
	}
	if cfg.Role == nil {
		cfg.Role = func(r *http.Request) (string, bool) { return RoleFromContext(r.Context()) }
	}
	if cfg.OnError == nil {
		cfg.OnError = func(w http.ResponseWriter, _ *http.Request, err error) {
			code := http.StatusForbidden
			if errors.Is(err, ErrRoleNotInContext) {
				code = http.StatusUnauthorized
			}
			http.Error(w, http.StatusText(code), code)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := cfg.Role(r)
			if !ok {
				cfg.OnError(w, r, ErrRoleNotInContext)
				return
			}

			pattern := cfg.Route(r)
			if err := cfg.Authorizer.Authorize(role, cfg.Routes.Required(r.Method, pattern)...); err != nil {
				denied := &DeniedError{Method: r.Method, Path: r.URL.Path, Role: role}
				cfg.Logger.WarnContext(r.Context(), "authorization denied",
					logger.Component("rbac"),
					logger.Event("access_denied"),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Role(role),
					slog.String("route", pattern),
				)
				cfg.OnError(w, r, denied)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}
