// Package pgtest provides PostgreSQL pools for integration tests.
//
// Tests using it are skipped unless TEST_PG_CONN_URL points at a database
// the test user may create schemas in. Every pool gets its own schema with
// all migrations applied, so tests can run in parallel against one server.
package pgtest

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/migrations"
	"github.com/dmitrymomot/mango/pkg/pg"
)

// EnvConnURL names the variable holding the test database URL.
const EnvConnURL = "TEST_PG_CONN_URL"

// goose keeps its settings in package globals
var migrateMu sync.Mutex

// NewPool returns a migrated pool bound to a fresh schema. The schema is
// dropped when the test ends.
func NewPool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(EnvConnURL)
	if url == "" {
		t.Skipf("%s is not set", EnvConnURL)
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	schema := "mango_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	// registered after the drop, so it runs first
	t.Cleanup(pool.Close)

	migrateMu.Lock()
	defer migrateMu.Unlock()
	err = pg.Migrate(ctx, pool, migrations.FS, pg.Config{MigrationsTable: "schema_migrations"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return pool
}
