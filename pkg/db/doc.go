// Package db connects to PostgreSQL and owns the schema for the recipient
// table and the activity log.
//
// [Connect] wraps [github.com/jackc/pgx/v5/pgxpool] with retry on startup,
// [Migrate] applies the embedded [github.com/pressly/goose/v3] migrations,
// and [WithTx] runs a function inside a transaction:
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [Healthcheck] returns a function usable as a health.CheckFunc.
package db
