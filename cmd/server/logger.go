package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/studydeck/internal/config"
	"github.com/phrazzld/studydeck/internal/platform/logger"
)

// setupAppLogger configures the process-wide JSON logger from cfg.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("logger configured", slog.String("level", cfg.Server.LogLevel))
	return l, nil
}
