// Package main is the entry point for the studydeck server.
// It loads configuration, opens the card store, wires the review services
// and serves the HTTP API until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a config file (defaults to ./config.yaml)")
	migrateOnly := pflag.Bool("migrate", false, "apply database migrations and exit")
	pflag.Parse()

	if err := run(context.Background(), *configPath, *migrateOnly); err != nil {
		slog.Error("studydeck failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run performs the startup sequence shared by the server and the --migrate mode.
func run(ctx context.Context, configPath string, migrateOnly bool) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateOnly || cfg.Database.AutoMigrate {
		if err := migrateDatabase(ctx, cfg.Database.Driver, db, logger); err != nil {
			closeDatabase(db, logger)
			return err
		}
		if migrateOnly {
			closeDatabase(db, logger)
			logger.Info("migrations applied, exiting")
			return nil
		}
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		closeDatabase(db, logger)
		return err
	}

	return app.Run(ctx)
}
