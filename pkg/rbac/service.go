package rbac

import (
	"cmp"
	"context"
	"slices"
)

// Authorizer compares role weights.
type Authorizer interface {
	// Weight returns the weight of role, or the unknown-role weight.
	Weight(role string) int

	// Authorize allows role when its weight is at least the weight of ANY of
	// the required roles. An empty required set allows every role.
	Authorize(role string, required ...string) error

	// AuthorizeFromContext runs Authorize with the role stored in ctx.
	AuthorizeFromContext(ctx context.Context, required ...string) error

	// VerifyRole returns ErrInvalidRole if role is not in the table.
	VerifyRole(role string) error

	// Roles returns all role names, heaviest first.
	Roles() []string
}

// Option configures the authorizer.
type Option func(*authorizer)

// WithUnknownWeight overrides the weight given to roles missing from the table.
func WithUnknownWeight(w int) Option {
	return func(a *authorizer) {
		a.unknownWeight = w
	}
}

type authorizer struct {
	// read-only after construction
	weights       Weights
	roles         []string
	unknownWeight int
}

// NewAuthorizer loads the weight table from source.
func NewAuthorizer(ctx context.Context, source WeightSource, opts ...Option) (Authorizer, error) {
	weights, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, ErrEmptyWeights
	}

	a := &authorizer{
		weights:       weights.clone(),
		unknownWeight: DefaultUnknownWeight,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.roles = make([]string, 0, len(a.weights))
	for role := range a.weights {
		a.roles = append(a.roles, role)
	}
	slices.SortFunc(a.roles, func(x, y string) int {
		if c := cmp.Compare(a.weights[y], a.weights[x]); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})

	return a, nil
}

func (a *authorizer) Weight(role string) int {
	if w, ok := a.weights[normalize(role)]; ok {
		return w
	}
	return a.unknownWeight
}

func (a *authorizer) Authorize(role string, required ...string) error {
	if len(required) == 0 {
		return nil
	}

	have := a.Weight(role)
	for _, r := range required {
		if a.Weight(r) <= have {
			return nil
		}
	}
	return ErrAccessDenied
}

func (a *authorizer) AuthorizeFromContext(ctx context.Context, required ...string) error {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return ErrRoleNotInContext
	}
	return a.Authorize(role, required...)
}

func (a *authorizer) VerifyRole(role string) error {
	if _, ok := a.weights[normalize(role)]; !ok {
		return ErrInvalidRole
	}
	return nil
}

func (a *authorizer) Roles() []string {
	return slices.Clone(a.roles)
}
