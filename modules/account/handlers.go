package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/handler"
	"github.com/dmitrymomot/mango/pkg/jwt"
	"github.com/dmitrymomot/mango/pkg/session"
	"github.com/dmitrymomot/mango/svc/user"
)

// UserService is the account logic the HTTP layer depends on.
type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, string, error)
	Login(ctx context.Context, email, password string) (*user.User, string, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]user.User, error)
	ListSessions(ctx context.Context, id uuid.UUID) ([]session.Session, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*user.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) (string, error)
	ChangeEmail(ctx context.Context, id uuid.UUID, password, newEmail string) (string, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role string) (*user.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, data []byte) (*user.User, error)
}

var _ UserService = (*user.Service)(nil)

type handlers struct {
	users UserService
}

func (h *handlers) register(ctx handler.Context, req registerRequest) handler.Response {
	u, token, err := h.users.Register(ctx, user.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(authResponse{User: u, Token: token}, handler.WithJSONStatus(http.StatusCreated))
}

func (h *handlers) login(ctx handler.Context, req loginRequest) handler.Response {
	u, token, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(authResponse{User: u, Token: token})
}

func (h *handlers) logout(ctx handler.Context, _ struct{}) handler.Response {
	token, ok := jwt.GetToken(ctx)
	if !ok {
		return handler.Error(session.ErrUnauthenticated)
	}
	if err := h.users.Logout(ctx, token); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func (h *handlers) me(ctx handler.Context, _ struct{}) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	u, err := h.users.GetUser(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (h *handlers) updateProfile(ctx handler.Context, req updateProfileRequest) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	u, err := h.users.UpdateProfile(ctx, id, req.Name)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (h *handlers) deleteMe(ctx handler.Context, _ struct{}) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.users.DeleteUser(ctx, id); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func (h *handlers) changePassword(ctx handler.Context, req changePasswordRequest) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	token, err := h.users.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(tokenResponse{Token: token})
}

func (h *handlers) changeEmail(ctx handler.Context, req changeEmailRequest) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	token, err := h.users.ChangeEmail(ctx, id, req.Password, req.Email)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(tokenResponse{Token: token})
}

func (h *handlers) updateAvatar(ctx handler.Context, req avatarRequest) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if req.Avatar == nil {
		v := handler.NewValidationError()
		v.Add("avatar", "is required")
		return handler.Error(v)
	}
	u, err := h.users.UpdateAvatar(ctx, id, req.Avatar.Content)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (h *handlers) sessions(ctx handler.Context, _ struct{}) handler.Response {
	id, err := currentUserID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	list, err := h.users.ListSessions(ctx, id)
	if err != nil {
		return handler.Error(err)
	}

	current, _ := jwt.GetToken(ctx)
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, sessionResponse{
			Agent:           s.Agent,
			IssuedAt:        s.IssuedAt,
			LastRefreshedAt: s.LastRefreshedAt,
			Current:         s.Token == current,
		})
	}
	return handler.JSON(out)
}

func (h *handlers) listUsers(ctx handler.Context, req listUsersRequest) handler.Response {
	users, err := h.users.ListUsers(ctx, req.Offset, req.Limit)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(users, handler.WithJSONMeta(map[string]any{
		"offset": max(req.Offset, 0),
		"count":  len(users),
	}))
}

func (h *handlers) getUser(ctx handler.Context, req userIDRequest) handler.Response {
	id, err := parseUserID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	u, err := h.users.GetUser(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (h *handlers) changeRole(ctx handler.Context, req changeRoleRequest) handler.Response {
	id, err := parseUserID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	u, err := h.users.ChangeRole(ctx, id, req.Role)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u)
}

func (h *handlers) deleteUser(ctx handler.Context, req userIDRequest) handler.Response {
	id, err := parseUserID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.users.DeleteUser(ctx, id); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	identity, ok := session.IdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, session.ErrUnauthenticated
	}
	return identity.ID, nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidUserID, err)
	}
	return id, nil
}
