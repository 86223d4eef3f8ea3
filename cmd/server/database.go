package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studydeck/internal/config"
	"github.com/phrazzld/studydeck/internal/platform/postgres"
	"github.com/phrazzld/studydeck/internal/platform/sqlite"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
)

// setupAppDatabase opens the configured database. The memory driver needs no
// connection and yields a nil *sql.DB.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Info("using in-memory card store, grades will not survive a restart")
		return nil, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite database opened")
		return db, nil

	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("postgres connection established")
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// migrateDatabase applies the driver's embedded migrations.
func migrateDatabase(ctx context.Context, driver string, db *sql.DB, logger *slog.Logger) error {
	switch driver {
	case config.DriverPostgres:
		return postgres.Migrate(ctx, db, logger)
	case config.DriverSQLite:
		return sqlite.Migrate(ctx, db, logger)
	default:
		logger.Info("nothing to migrate", slog.String("driver", driver))
		return nil
	}
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", slog.String("error", err.Error()))
	}
}
