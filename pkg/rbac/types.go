package rbac

import "strings"

// Built-in role names.
const (
	RoleCEO       = "ceo"
	RoleCTO       = "cto"
	RoleDeveloper = "developer"
	RoleStaff     = "staff"
	RoleSales     = "sales"
	RoleUser      = "user"
)

// DefaultUnknownWeight is the weight of a role missing from the table. It
// equals the base user role, so unknown roles are treated as regular users.
const DefaultUnknownWeight = 1

// Weights maps role names to a total order used for coarse authorization.
type Weights map[string]int

// DefaultWeights returns the built-in role weight table.
func DefaultWeights() Weights {
	return Weights{
		RoleCEO:       1000,
		RoleCTO:       999,
		RoleDeveloper: 666,
		RoleStaff:     150,
		RoleSales:     100,
		RoleUser:      1,
	}
}

func (w Weights) clone() Weights {
	out := make(Weights, len(w))
	for role, weight := range w {
		out[normalize(role)] = weight
	}
	return out
}

func normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
