package rbac

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidWeightsFile is returned when a weight file cannot be decoded.
var ErrInvalidWeightsFile = errors.New("rbac.invalid_weights_file")

// fileWeights is the YAML layout of a weight file:
//
//	roles:
//	  ceo: 1000
//	  staff: 150
//	  user: 1
type fileWeights struct {
	Roles map[string]int `yaml:"roles"`
}

type fileWeightSource struct {
	path string
}

// NewFileWeightSource reads the weight table from a YAML file on every Load.
func NewFileWeightSource(path string) WeightSource {
	return &fileWeightSource{path: path}
}

func (s *fileWeightSource) Load(context.Context) (Weights, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}

	var doc fileWeights
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrInvalidWeightsFile, err)
	}

	weights := make(Weights, len(doc.Roles))
	for role, w := range doc.Roles {
		role = normalize(role)
		if role == "" {
			return nil, fmt.Errorf("%w: empty role name", ErrInvalidWeightsFile)
		}
		if _, dup := weights[role]; dup {
			return nil, fmt.Errorf("%w: duplicate role %q", ErrInvalidWeightsFile, role)
		}
		weights[role] = w
	}
	return weights, nil
}
