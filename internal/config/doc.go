// Package config loads studydeck settings from defaults, an optional YAML
// file and STUDYDECK_* environment variables, then validates them. Server,
// database, scheduler and deck settings each have their own struct.
package config
