package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	// Development for development environment.
	Development Environment = "development"
	// Production for production environment.
	Production Environment = "production"
	// Staging for staging environment.
	Staging Environment = "staging"
)

// Parse maps common spellings to an Environment. Unknown values fall back to
// Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

// String implements fmt.Stringer.
func (e Environment) String() string { return string(e) }

// IsProduction reports whether e is production.
func (e Environment) IsProduction() bool { return Parse(string(e)) == Production }

// IsProductionLike reports whether e should run with production hardening,
// which covers staging as well.
func (e Environment) IsProductionLike() bool {
	switch Parse(string(e)) {
	case Production, Staging:
		return true
	}
	return false
}
