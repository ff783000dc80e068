// Package db provides PostgreSQL helpers built on pgx: a pooled connection
// with startup retries, goose migrations from an fs.FS, a transaction helper
// and a readiness check.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, db.Up, log); err != nil {
//		return err
//	}
//
// WithTx commits when fn returns nil and rolls back on error or panic:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "UPDATE exam SET user_id = $1 WHERE id = $2", userID, examID)
//		return err
//	})
package db
