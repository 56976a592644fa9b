package rbac

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RouteTable binds route identifiers ("METHOD /pattern") to required roles.
// Routes missing from the table only require an authenticated identity.
type RouteTable map[string][]string

// RouteKey builds a RouteTable key.
func RouteKey(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}

// Required returns the roles required for method and pattern.
func (t RouteTable) Required(method, pattern string) []string {
	return t[RouteKey(method, pattern)]
}

// Validate checks every role named in the table against the authorizer, so
// typos surface at startup instead of silently getting the unknown weight.
func (t RouteTable) Validate(a Authorizer) error {
	var errs []error
	for route, roles := range t {
		for _, role := range roles {
			if err := a.VerifyRole(role); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q on %s", err, role, route))
			}
		}
	}
	return errors.Join(errs...)
}

// RouteFunc returns the route pattern that matched r.
type RouteFunc func(r *http.Request) string

// RoleFunc returns the role of the authenticated principal.
type RoleFunc func(r *http.Request) (string, bool)

// ErrorResponder writes an error response.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)
