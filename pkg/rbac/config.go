package rbac

import "context"

// Config is loaded from the environment. ROLE_WEIGHTS uses the
// "role:weight,role:weight" form; ROLE_WEIGHTS_FILE, when set, points at a
// YAML weight file that replaces it.
type Config struct {
	WeightsFile   string         `env:"ROLE_WEIGHTS_FILE"`
	Weights       map[string]int `env:"ROLE_WEIGHTS" envKeyValSeparator:":" envDefault:"ceo:1000,cto:999,developer:666,staff:150,sales:100,user:1"`
	UnknownWeight int            `env:"RBAC_DEFAULT_WEIGHT" envDefault:"1"`
}

// NewFromConfig builds an authorizer from cfg. An empty weight table falls
// back to DefaultWeights.
func NewFromConfig(ctx context.Context, cfg Config) (Authorizer, error) {
	unknown := cfg.UnknownWeight
	if unknown == 0 {
		unknown = DefaultUnknownWeight
	}

	var source WeightSource
	if cfg.WeightsFile != "" {
		source = NewFileWeightSource(cfg.WeightsFile)
	} else {
		weights := Weights(cfg.Weights)
		if len(weights) == 0 {
			weights = DefaultWeights()
		}
		source = NewInMemWeightSource(weights)
	}
	return NewAuthorizer(ctx, source, WithUnknownWeight(unknown))
}
