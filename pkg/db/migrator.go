package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Direction selects the goose command run by Migrate.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

const defaultMigrationsTable = "schema_migrations"

// Migrate runs the goose migrations found at the root of fsys.
// An empty table name defaults to "schema_migrations".
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, table string, dir Direction, log *slog.Logger) error {
	// Shares the pool's connections; closing it would close the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)

	if table == "" {
		table = defaultMigrationsTable
	}

	goose.SetBaseFS(fsys)
	goose.SetLogger(&gooseLogger{log: log})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	var err error
	switch dir {
	case Up, "":
		err = goose.UpContext(ctx, sqlDB, ".")
	case Down:
		err = goose.DownContext(ctx, sqlDB, ".")
	case Status:
		err = goose.StatusContext(ctx, sqlDB, ".")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only; goose returns the error to the caller.
func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
