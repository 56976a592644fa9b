// Package rbac implements weight based role authorization.
//
// Every role has an integer weight (ceo=1000, cto=999, developer=666,
// staff=150, sales=100, user=1 by default). A principal passes a check when
// its weight is greater than or equal to the weight of at least one of the
// required roles; an empty requirement admits any authenticated principal.
// Role names missing from the table get DefaultUnknownWeight, the same as the
// base user role.
//
//	authz, err := rbac.NewAuthorizer(ctx, rbac.NewInMemWeightSource(rbac.DefaultWeights()))
//	if err != nil {
//		return err
//	}
//
//	routes := rbac.RouteTable{
//		rbac.RouteKey(http.MethodGet, "/users"):         {rbac.RoleStaff},
//		rbac.RouteKey(http.MethodDelete, "/users/{id}"): {rbac.RoleCTO},
//	}
//	if err := routes.Validate(authz); err != nil {
//		return err
//	}
//
//	r.Use(rbac.Middleware(rbac.MiddlewareConfig{
//		Authorizer: authz,
//		Routes:     routes,
//		Route:      chiRoutePattern,
//		Role:       roleFromSession,
//	}))
package rbac
