package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DATABASE_PATH", "NATS_URL", "REPO_TIMEOUT", "ALLOWED_ORIGIN", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabasePath)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, 5*time.Second, cfg.RepoTimeout)
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DATABASE_PATH", "/tmp/games.db")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("REPO_TIMEOUT", "250ms")
	t.Setenv("ALLOWED_ORIGIN", "https://example.com")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/games.db", cfg.DatabasePath)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RepoTimeout)
	assert.Equal(t, "https://example.com", cfg.AllowedOrigin)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("REPO_TIMEOUT", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
