package account

import (
	"net/http"

	"github.com/dmitrymomot/mango/handler"
	"github.com/dmitrymomot/mango/pkg/binder"
	"github.com/dmitrymomot/mango/pkg/ratelimiter"
	"github.com/dmitrymomot/mango/pkg/rbac"
	"github.com/dmitrymomot/mango/pkg/session"
	"github.com/dmitrymomot/mango/pkg/storage"
	"github.com/dmitrymomot/mango/svc/user"
)

// HTTP errors answered by the account API.
var (
	ErrUnauthenticated    = handler.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	ErrInvalidToken       = handler.NewHTTPError(http.StatusNotAcceptable, "invalid_token")
	ErrTokenExpired       = handler.NewHTTPError(http.StatusForbidden, "token_expired")
	ErrTokenNoLongerValid = handler.NewHTTPError(http.StatusUnauthorized, "token_no_longer_valid")
	ErrAccessDenied       = handler.NewHTTPError(http.StatusForbidden, "access_denied")
	ErrInvalidCredentials = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials")
	ErrEmailTaken         = handler.NewHTTPError(http.StatusConflict, "email_already_exists")
	ErrEmailUnchanged     = handler.NewHTTPError(http.StatusConflict, "email_unchanged")
	ErrUserNotFound       = handler.NewHTTPError(http.StatusNotFound, "user_not_found")
	ErrInvalidRole        = handler.NewHTTPError(http.StatusUnprocessableEntity, "invalid_role")
	ErrRoleAboveActor     = handler.NewHTTPError(http.StatusForbidden, "role_above_actor")
	ErrUnsupportedAvatar  = handler.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_avatar")
	ErrAvatarTooLarge     = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "avatar_too_large")
	ErrAvatarsDisabled    = handler.NewHTTPError(http.StatusNotImplemented, "avatars_disabled")
	ErrInvalidUserID      = handler.NewHTTPError(http.StatusBadRequest, "invalid_user_id")
)

// ErrorRules maps the session, rbac, user and binder errors to HTTP errors.
// Order matters: the first rule whose target matches wins.
func ErrorRules() []handler.ErrorRule {
	return []handler.ErrorRule{
		handler.Map(session.ErrUnauthenticated, ErrUnauthenticated),
		handler.MapExposed(session.ErrMalformedToken, ErrInvalidToken),
		handler.Map(session.ErrTokenExpired, ErrTokenExpired),
		handler.Map(session.ErrTokenNoLongerValid, ErrTokenNoLongerValid),
		handler.Map(rbac.ErrRoleNotInContext, ErrUnauthenticated),
		handler.MapExposed(rbac.ErrAccessDenied, ErrAccessDenied),

		handler.Map(user.ErrInvalidCredentials, ErrInvalidCredentials),
		handler.Map(user.ErrEmailAlreadyExists, ErrEmailTaken),
		handler.Map(user.ErrEmailUnchanged, ErrEmailUnchanged),
		handler.Map(user.ErrUserNotFound, ErrUserNotFound),
		handler.MapExposed(user.ErrInvalidRole, ErrInvalidRole),
		handler.Map(user.ErrRoleAboveActor, ErrRoleAboveActor),
		handler.Map(user.ErrUnsupportedAvatar, ErrUnsupportedAvatar),
		handler.Map(user.ErrAvatarTooLarge, ErrAvatarTooLarge),
		handler.Map(user.ErrAvatarsDisabled, ErrAvatarsDisabled),

		handler.Map(binder.ErrFileTooLarge, ErrAvatarTooLarge),
		handler.Map(binder.ErrUnsupportedMediaType, handler.ErrUnsupportedMediaType),
		handler.Map(binder.ErrMissingContentType, handler.ErrUnsupportedMediaType),
		handler.MapExposed(binder.ErrInvalidJSON, handler.ErrBadRequest),
		handler.MapExposed(binder.ErrInvalidPath, handler.ErrBadRequest),
		handler.MapExposed(binder.ErrInvalidQuery, handler.ErrBadRequest),
		handler.MapExposed(binder.ErrInvalidForm, handler.ErrBadRequest),

		handler.Map(ratelimiter.ErrLimitExceeded, handler.ErrTooManyRequests),
		handler.Map(ratelimiter.ErrStoreUnavailable, handler.ErrServiceUnavailable),
		handler.Map(storage.ErrServiceUnavailable, handler.ErrServiceUnavailable),
		handler.Map(storage.ErrOperationTimeout, handler.ErrServiceUnavailable),
	}
}

// NewErrorMapper returns a mapper with ErrorRules followed by extra.
func NewErrorMapper(extra ...handler.ErrorRule) *handler.ErrorMapper {
	return handler.NewErrorMapper(ErrorRules()...).With(extra...)
}
