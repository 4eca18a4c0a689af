// Package config loads the application configuration for the CLI: a YAML
// file with defaults for every field, plus environment overrides for hosts
// and secrets (optionally sourced from a .env file).
package config
