package rbac

import "context"

// WeightSource provides the role weight table.
type WeightSource interface {
	Load(ctx context.Context) (Weights, error)
}

type inMemWeightSource struct {
	weights Weights
}

// NewInMemWeightSource creates a source that returns a copy of weights.
func NewInMemWeightSource(weights Weights) WeightSource {
	return &inMemWeightSource{weights: weights.clone()}
}

// Load returns the table. The authorizer copies it, callers may not mutate it.
func (s *inMemWeightSource) Load(context.Context) (Weights, error) {
	return s.weights, nil
}
