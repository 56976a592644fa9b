package rbac

import "context"

type roleKey struct{}

// WithRole stores the role the authorization check admitted.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, normalize(role))
}

// RoleFromContext returns the admitted role. Empty roles count as missing.
func RoleFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	role, _ := ctx.Value(roleKey{}).(string)
	return role, role != ""
}
