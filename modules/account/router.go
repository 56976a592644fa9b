package account

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mango/handler"
	"github.com/dmitrymomot/mango/pkg/binder"
	"github.com/dmitrymomot/mango/pkg/clientip"
	"github.com/dmitrymomot/mango/pkg/httpserver"
	"github.com/dmitrymomot/mango/pkg/ratelimiter"
	"github.com/dmitrymomot/mango/pkg/rbac"
	"github.com/dmitrymomot/mango/pkg/requestid"
	"github.com/dmitrymomot/mango/pkg/session"
	"github.com/dmitrymomot/mango/svc/user"
)

// DefaultReadinessTimeout bounds all readiness checks of one probe.
const DefaultReadinessTimeout = 2 * time.Second

var errMissingDependency = errors.New("account: users, verifier and authorizer are required")

// RouterOptions configures the account API.
type RouterOptions struct {
	Users      UserService
	Verifier   *session.Verifier
	Authorizer rbac.Authorizer

	// Routes defaults to Routes().
	Routes rbac.RouteTable

	// Mapper defaults to NewErrorMapper().
	Mapper *handler.ErrorMapper

	// RefreshHeader carries refreshed tokens, defaults to session.DefaultRefreshHeader.
	RefreshHeader string

	// LoginLimiter throttles register and login per client address and
	// path. Nil disables throttling.
	LoginLimiter *ratelimiter.Bucket

	ReadinessChecks  map[string]httpserver.Check
	ReadinessTimeout time.Duration

	Logger *slog.Logger
}

// Router builds the account API. Public routes sit next to a group guarded
// by the session gate followed by the role check.
//
//	r, err := account.Router(account.RouterOptions{
//		Users:      users,
//		Verifier:   verifier,
//		Authorizer: authorizer,
//	})
func Router(opts RouterOptions) (chi.Router, error) {
	if opts.Users == nil || opts.Verifier == nil || opts.Authorizer == nil {
		return nil, errMissingDependency
	}
	if opts.Routes == nil {
		opts.Routes = Routes()
	}
	if err := opts.Routes.Validate(opts.Authorizer); err != nil {
		return nil, err
	}
	if opts.Mapper == nil {
		opts.Mapper = NewErrorMapper()
	}
	if opts.RefreshHeader == "" {
		opts.RefreshHeader = session.DefaultRefreshHeader
	}
	if opts.ReadinessTimeout <= 0 {
		opts.ReadinessTimeout = DefaultReadinessTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &handlers{users: opts.Users}
	onError := handler.NewErrorHandler(opts.Mapper, opts.Logger)
	respond := opts.Mapper.Responder(opts.Logger)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware, session.ClientContext)

	r.Get(PathHealthLive, httpserver.LivenessHandler())
	r.Get(PathHealthReady, httpserver.ReadinessHandler(opts.Logger, opts.ReadinessTimeout, opts.ReadinessChecks))

	r.Group(func(r chi.Router) {
		if opts.LoginLimiter != nil {
			r.Use(ratelimiter.Middleware(opts.LoginLimiter,
				ratelimiter.Composite(ratelimiter.ByIP, ratelimiter.ByPath),
				ratelimiter.WithErrorResponder(respond),
				ratelimiter.WithLogger(opts.Logger),
			))
		}
		r.Post(PathRegister, wrap(h.register, onError, binder.JSON()))
		r.Post(PathLogin, wrap(h.login, onError, binder.JSON()))
	})

	r.Group(func(r chi.Router) {
		r.Use(
			session.Authenticate(opts.Verifier,
				session.WithErrorResponder(respond),
				session.WithRefreshHeader(opts.RefreshHeader),
			),
			rbac.Middleware(rbac.MiddlewareConfig{
				Authorizer: opts.Authorizer,
				Routes:     opts.Routes,
				Route:      routePattern,
				Role:       identityRole,
				OnError:    respond,
				Logger:     opts.Logger,
			}),
		)

		r.Post(PathLogout, wrap(h.logout, onError))

		r.Get(PathMe, wrap(h.me, onError))
		r.Patch(PathMe, wrap(h.updateProfile, onError, binder.JSON()))
		r.Delete(PathMe, wrap(h.deleteMe, onError))
		r.Put(PathMePassword, wrap(h.changePassword, onError, binder.JSON()))
		r.Put(PathMeEmail, wrap(h.changeEmail, onError, binder.JSON()))
		r.Put(PathMeAvatar, wrap(h.updateAvatar, onError, binder.File(binder.WithMaxFileSize(user.MaxAvatarSize))))
		r.Get(PathMeSessions, wrap(h.sessions, onError))

		r.Get(PathUsers, wrap(h.listUsers, onError, binder.Query()))
		r.Get(PathUser, wrap(h.getUser, onError, binder.Path(chi.URLParam)))
		r.Put(PathUserRole, wrap(h.changeRole, onError, binder.Path(chi.URLParam), binder.JSON()))
		r.Delete(PathUser, wrap(h.deleteUser, onError, binder.Path(chi.URLParam)))
	})

	return r, nil
}

func wrap[R any](h handler.HandlerFunc[handler.Context, R], onError handler.ErrorHandler[handler.Context], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](onError),
	)
}

// routePattern returns the chi pattern of the matched route. Group
// middlewares run after routing, so the pattern is complete here.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func identityRole(r *http.Request) (string, bool) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		return "", false
	}
	return identity.Role, true
}
