package rbac_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/config"
	"github.com/dmitrymomot/mango/pkg/rbac"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Parse[rbac.Config]()
		require.NoError(t, err)

		auth, err := rbac.NewFromConfig(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, 666, auth.Weight(rbac.RoleDeveloper))
		assert.Equal(t, rbac.DefaultUnknownWeight, auth.Weight("intern"))
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("ROLE_WEIGHTS", "owner:10,member:5")
		t.Setenv("RBAC_DEFAULT_WEIGHT", "0")

		cfg, err := config.Parse[rbac.Config]()
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"owner": 10, "member": 5}, cfg.Weights)

		auth, err := rbac.NewFromConfig(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"owner", "member"}, auth.Roles())
		assert.NoError(t, auth.Authorize("owner", "member"))
		assert.ErrorIs(t, auth.Authorize("member", "owner"), rbac.ErrAccessDenied)
	})
}

func TestNewFromConfig_WeightsFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "roles.yaml")
	require.NoError(t, os.WriteFile(good, []byte("roles:\n  Admin: 50\n  member: 5\n"), 0o600))

	t.Setenv("ROLE_WEIGHTS_FILE", good)
	cfg, err := config.Parse[rbac.Config]()
	require.NoError(t, err)

	auth, err := rbac.NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "member"}, auth.Roles())
	assert.Equal(t, 50, auth.Weight("admin"))
	assert.Equal(t, rbac.DefaultUnknownWeight, auth.Weight("ceo"))

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"not yaml", "roles: [", rbac.ErrInvalidWeightsFile},
		{"duplicate after normalization", "roles:\n  staff: 1\n  Staff: 2\n", rbac.ErrInvalidWeightsFile},
		{"empty table", "roles: {}\n", rbac.ErrEmptyWeights},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := rbac.NewAuthorizer(context.Background(), rbac.NewFileWeightSource(path))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = rbac.NewAuthorizer(context.Background(), rbac.NewFileWeightSource(filepath.Join(dir, "missing.yaml")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
