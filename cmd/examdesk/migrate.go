package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/examdesk/internal/config"
	"github.com/dmitrymomot/examdesk/migrations"
	"github.com/dmitrymomot/examdesk/pkg/db"
	"github.com/dmitrymomot/examdesk/pkg/job"
	"github.com/dmitrymomot/examdesk/pkg/logger"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	run := func(dir db.Direction) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LoggerConfig())
			return withPool(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				return migrate(cmd.Context(), pool, cfg, dir, log)
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply pending migrations", RunE: run(db.Up)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", RunE: run(db.Down)},
		&cobra.Command{Use: "status", Short: "Show migration status", RunE: run(db.Status)},
	)
	return cmd
}

// migrate applies the schema migrations; on the way up the job queue
// tables follow.
func migrate(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, dir db.Direction, log *slog.Logger) error {
	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, dir, log); err != nil {
		return err
	}
	if dir == db.Up && cfg.Jobs.Enabled {
		if err := job.Migrate(ctx, pool); err != nil {
			return err
		}
		log.InfoContext(ctx, "job queue migrated")
	}
	return nil
}

func withPool(ctx context.Context, cfg *config.Config, fn func(*pgxpool.Pool) error) error {
	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(pool)
}
