package config

import (
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
)

// Database drivers understood by cmd/server.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
	Deck     DeckConfig     `mapstructure:"deck"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Sessions unused for this long are evicted. Zero keeps the default.
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" validate:"gte=0"`
}

// DatabaseConfig selects the card store.
// The memory driver keeps cards in process only and needs no URL.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=memory postgres sqlite"`
	URL         string `mapstructure:"url" validate:"required_unless=Driver memory"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// SRSConfig holds scheduler parameters. Zero values keep the SM-2 defaults.
type SRSConfig struct {
	MinEaseFactor        float64 `mapstructure:"min_ease_factor" validate:"omitempty,gte=1.3"`
	PassingGrade         int     `mapstructure:"passing_grade" validate:"omitempty,gte=1,lte=5"`
	FirstInterval        int     `mapstructure:"first_interval" validate:"omitempty,gte=1"`
	SecondInterval       int     `mapstructure:"second_interval" validate:"omitempty,gte=1"`
	MasteredIntervalDays int     `mapstructure:"mastered_interval_days" validate:"required,gte=2"`
}

// DeckConfig describes the initial deck and the subject registry.
type DeckConfig struct {
	SeedFile string           `mapstructure:"seed_file"`
	Subjects []domain.Subject `mapstructure:"subjects" validate:"dive"`
}
