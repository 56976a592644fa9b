package rbac_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/rbac"
)

func TestRouteTable(t *testing.T) {
	t.Parallel()
	auth := newAuthorizer(t)

	routes := rbac.RouteTable{
		rbac.RouteKey("get", "/users"):         {rbac.RoleStaff},
		rbac.RouteKey("DELETE", "/users/{id}"): {rbac.RoleCTO},
	}
	assert.Equal(t, []string{"staff"}, routes.Required(http.MethodGet, "/users"))
	assert.Empty(t, routes.Required(http.MethodGet, "/users/me"))
	assert.NoError(t, routes.Validate(auth))

	routes[rbac.RouteKey("POST", "/reports")] = []string{"manger"}
	err := routes.Validate(auth)
	require.ErrorIs(t, err, rbac.ErrInvalidRole)
	assert.Contains(t, err.Error(), "POST /reports")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	auth := newAuthorizer(t)
	routes := rbac.RouteTable{
		rbac.RouteKey(http.MethodGet, "/users"): {rbac.RoleStaff},
	}

	serve := func(role string, path string) (*httptest.ResponseRecorder, error) {
		var gotErr error
		mw := rbac.Middleware(rbac.MiddlewareConfig{
			Authorizer: auth,
			Routes:     routes,
			Role: func(r *http.Request) (string, bool) {
				return role, role != ""
			},
			OnError: func(w http.ResponseWriter, r *http.Request, err error) {
				gotErr = err
				w.WriteHeader(http.StatusForbidden)
			},
		})
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ := rbac.RoleFromContext(r.Context())
			assert.Equal(t, role, got)
			w.WriteHeader(http.StatusNoContent)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec, gotErr
	}

	t.Run("allowed", func(t *testing.T) {
		rec, err := serve(rbac.RoleDeveloper, "/users")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("denied carries route method and role", func(t *testing.T) {
		rec, err := serve(rbac.RoleUser, "/users")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.ErrorIs(t, err, rbac.ErrAccessDenied)

		var denied *rbac.DeniedError
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, "/users", denied.Path)
		assert.Equal(t, http.MethodGet, denied.Method)
		assert.Equal(t, "user", denied.Role)
		assert.Contains(t, err.Error(), "GET /users")
	})

	t.Run("unlisted route needs only a principal", func(t *testing.T) {
		rec, err := serve(rbac.RoleUser, "/users/me")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("no principal", func(t *testing.T) {
		_, err := serve("", "/users/me")
		assert.ErrorIs(t, err, rbac.ErrRoleNotInContext)
	})
}

func TestMiddleware_DefaultResponder(t *testing.T) {
	t.Parallel()

	h := rbac.Middleware(rbac.MiddlewareConfig{
		Authorizer: newAuthorizer(t),
		Routes:     rbac.RouteTable{rbac.RouteKey(http.MethodGet, "/admin"): {rbac.RoleCEO}},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(rbac.WithRole(req.Context(), rbac.RoleStaff))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
