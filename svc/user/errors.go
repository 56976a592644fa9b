package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user.not_found")
	ErrEmailAlreadyExists = errors.New("user.email_already_exists")
	ErrInvalidCredentials = errors.New("user.invalid_credentials")
	ErrEmailUnchanged     = errors.New("user.email_unchanged")
	ErrInvalidRole        = errors.New("user.invalid_role")
	ErrRoleAboveActor     = errors.New("user.role_above_actor")
	ErrUnsupportedAvatar  = errors.New("user.unsupported_avatar")
	ErrAvatarTooLarge     = errors.New("user.avatar_too_large")
)
