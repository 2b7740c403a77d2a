package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "ws://localhost:8080/realtime", cfg.RealtimeURL)
	assert.Equal(t, "roadassist.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.RefreshThreshold)
	assert.Equal(t, 5, cfg.OutboxMaxAttempts)
	assert.False(t, cfg.PurgeOutboxOnLogout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ROADASSIST_SERVER_URL", "https://api.example.com")
	t.Setenv("ROADASSIST_CACHE_TTL", "30m")
	t.Setenv("ROADASSIST_MAX_RECONNECTS", "3")
	t.Setenv("ROADASSIST_PURGE_OUTBOX_ON_LOGOUT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.ServerURL)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.MaxReconnects)
	assert.True(t, cfg.PurgeOutboxOnLogout)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ROADASSIST_CACHE_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
