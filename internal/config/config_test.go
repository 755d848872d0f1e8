package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "client-id", cfg.SpotifyClientID)
	assert.Equal(t, "client-secret", cfg.SpotifyClientSecret)
	assert.Equal(t, "redis://cache:6379", cfg.RedisURL)
}
