// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool with a linear retry, Migrate applies goose
// migrations from an fs.FS (usually an embed.FS compiled into the binary),
// Healthcheck adapts the pool to a readiness probe, and the Is*Error helpers
// classify driver errors so repositories can translate them into domain
// sentinels.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// Repositories accept a Querier so they work with both a pool and a pgx.Tx.
package pg
