package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mango/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want environment.Environment
	}{
		{"production", environment.Production},
		{"PROD", environment.Production},
		{" staging ", environment.Staging},
		{"stage", environment.Staging},
		{"development", environment.Development},
		{"", environment.Development},
		{"qa", environment.Development},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, environment.Parse(tt.in))
		})
	}
}

func TestProductionLike(t *testing.T) {
	t.Parallel()

	assert.True(t, environment.Production.IsProduction())
	assert.True(t, environment.Production.IsProductionLike())
	assert.True(t, environment.Staging.IsProductionLike())
	assert.False(t, environment.Staging.IsProduction())
	assert.False(t, environment.Development.IsProductionLike())
	assert.True(t, environment.Environment("prod").IsProductionLike())
}
