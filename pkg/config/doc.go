// Package config loads typed configuration from environment variables.
//
// Each package owns a Config struct with env tags; the application loads
// them through Load, which reads an optional .env file once and caches the
// parsed value per type.
package config
