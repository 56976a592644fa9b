package rbac

import (
	"errors"
	"fmt"
)

// Domain errors for RBAC operations.
var (
	// ErrInvalidRole is returned when a role is not in the weight table.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrAccessDenied is returned when the role weight is below every required role.
	ErrAccessDenied = errors.New("rbac.access_denied")

	// ErrRoleNotInContext is returned when no role is found in the context.
	ErrRoleNotInContext = errors.New("rbac.role_not_in_context")

	// ErrEmptyWeights is returned when the weight source has no roles.
	ErrEmptyWeights = errors.New("rbac.empty_weights")
)

// DeniedError describes a denied request. It matches ErrAccessDenied.
type DeniedError struct {
	Method string
	Path   string
	Role   string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: role %q may not %s %s", ErrAccessDenied, e.Role, e.Method, e.Path)
}

// Is reports whether target is ErrAccessDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}
