package main

import (
	"fmt"

	"github.com/phrazzld/studydeck/internal/config"
)

// loadAppConfig loads configuration from the given file, or from ./config.yaml
// and STUDYDECK_* environment variables when path is empty.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
