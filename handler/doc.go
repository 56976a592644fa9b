// Package handler provides type-safe HTTP request handling for the JSON API.
//
// Handlers are generic functions that receive a bound request struct and
// return a Response:
//
//	type loginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	func login(ctx handler.Context, req loginRequest) handler.Response {
//		u, token, err := users.Login(ctx, req.Email, req.Password)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(authResponse{User: u, Token: token})
//	}
//
//	r.Post("/auth/login", handler.Wrap(login,
//		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, loginRequest](errorHandler),
//	))
//
// # Errors
//
// Domain packages return sentinel errors. ErrorMapper is the one place that
// turns them into HTTP statuses; it is built once in main and shared by
// NewErrorHandler (for wrapped handlers) and Responder (for middlewares):
//
//	mapper := handler.NewErrorMapper(
//		handler.Map(session.ErrTokenExpired, handler.NewHTTPError(http.StatusForbidden, "token_expired")),
//		handler.MapExposed(rbac.ErrAccessDenied, handler.NewHTTPError(http.StatusForbidden, "access_denied")),
//	)
//
// handler.Error passes a domain error to that handler unchanged. JSONError
// renders directly and only knows ValidationError and HTTPError.
//
// Every error is answered with
//
//	{"error": {"code": "token_expired", "message": "Forbidden"}}
//
// ValidationError always maps to 422 with per-field details. Unmapped errors
// become 500 with a generic message and are logged at error level.
package handler
