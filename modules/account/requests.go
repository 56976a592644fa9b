package account

import (
	"time"

	"github.com/dmitrymomot/mango/pkg/binder"
	"github.com/dmitrymomot/mango/svc/user"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type changeEmailRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

type avatarRequest struct {
	Avatar *binder.FileUpload `file:"avatar"`
}

type listUsersRequest struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

type userIDRequest struct {
	ID string `path:"id"`
}

type changeRoleRequest struct {
	ID   string `path:"id" json:"-"`
	Role string `json:"role"`
}

type authResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Agent           string    `json:"agent,omitempty"`
	IssuedAt        time.Time `json:"issued_at"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
	Current         bool      `json:"current"`
}
