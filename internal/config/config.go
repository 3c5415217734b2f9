// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all server settings.
type Config struct {
	// Addr is the listen address of the HTTP/WebSocket server.
	Addr string `env:"ADDR" envDefault:":8080"`

	// DatabasePath is the SQLite file backing the game repository.
	// Empty selects the in-memory store.
	DatabasePath string `env:"DATABASE_PATH"`

	// NATSURL enables the snapshot event publisher when set.
	NATSURL string `env:"NATS_URL"`

	// RepoTimeout bounds every repository call.
	RepoTimeout time.Duration `env:"REPO_TIMEOUT" envDefault:"5s"`

	// AllowedOrigin is the CORS origin allowed on the REST surface.
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`

	// ShutdownTimeout bounds the graceful drain on exit.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads a local .env file if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
