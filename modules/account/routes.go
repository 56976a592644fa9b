package account

import (
	"net/http"

	"github.com/dmitrymomot/mango/pkg/rbac"
)

// Route patterns as registered on the chi router.
const (
	PathRegister    = "/auth/register"
	PathLogin       = "/auth/login"
	PathLogout      = "/auth/logout"
	PathMe          = "/users/me"
	PathMePassword  = "/users/me/password"
	PathMeEmail     = "/users/me/email"
	PathMeAvatar    = "/users/me/avatar"
	PathMeSessions  = "/users/me/sessions"
	PathUsers       = "/users"
	PathUser        = "/users/{id}"
	PathUserRole    = "/users/{id}/role"
	PathHealthLive  = "/health/live"
	PathHealthReady = "/health/ready"
)

// Routes returns the roles required per authenticated route. Routes under
// /users/me are open to any authenticated user and are not listed.
func Routes() rbac.RouteTable {
	return rbac.RouteTable{
		rbac.RouteKey(http.MethodGet, PathUsers):    {rbac.RoleStaff},
		rbac.RouteKey(http.MethodGet, PathUser):     {rbac.RoleStaff},
		rbac.RouteKey(http.MethodPut, PathUserRole): {rbac.RoleCTO},
		rbac.RouteKey(http.MethodDelete, PathUser):  {rbac.RoleCTO},
	}
}
