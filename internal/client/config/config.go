package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the client, loaded from the environment.
// Flags in cmd/client override individual fields after loading.
type Config struct {
	// ServerURL is the HTTP API base
	ServerURL string `env:"ROADASSIST_SERVER_URL" envDefault:"http://localhost:8080"`

	// RealtimeURL is the websocket endpoint
	RealtimeURL string `env:"ROADASSIST_REALTIME_URL" envDefault:"ws://localhost:8080/realtime"`

	// DBPath is where the bbolt file lives
	DBPath string `env:"ROADASSIST_DB_PATH" envDefault:"roadassist.db"`

	// DeviceSecret feeds the at-rest encryption key derivation. Must be
	// set outside of local development.
	DeviceSecret string `env:"ROADASSIST_DEVICE_SECRET" envDefault:"dev-only-device-secret"`

	// CacheTTL is the default freshness window for cached entities
	CacheTTL time.Duration `env:"ROADASSIST_CACHE_TTL" envDefault:"1h"`

	// SweepInterval drives periodic eviction of expired cache entries
	SweepInterval time.Duration `env:"ROADASSIST_SWEEP_INTERVAL" envDefault:"1m"`

	// RefreshThreshold is how close to expiry a token may get before it is
	// refreshed pre-emptively
	RefreshThreshold time.Duration `env:"ROADASSIST_REFRESH_THRESHOLD" envDefault:"5m"`

	// Outbox retry policy
	OutboxMaxAttempts int           `env:"ROADASSIST_OUTBOX_MAX_ATTEMPTS" envDefault:"5"`
	OutboxBaseDelay   time.Duration `env:"ROADASSIST_OUTBOX_BASE_DELAY" envDefault:"2s"`
	OutboxMaxDelay    time.Duration `env:"ROADASSIST_OUTBOX_MAX_DELAY" envDefault:"2m"`

	// Realtime connection policy
	HandshakeTimeout  time.Duration `env:"ROADASSIST_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	HeartbeatInterval time.Duration `env:"ROADASSIST_HEARTBEAT_INTERVAL" envDefault:"25s"`
	ReconnectBase     time.Duration `env:"ROADASSIST_RECONNECT_BASE" envDefault:"1s"`
	ReconnectMax      time.Duration `env:"ROADASSIST_RECONNECT_MAX" envDefault:"1m"`
	MaxReconnects     int           `env:"ROADASSIST_MAX_RECONNECTS" envDefault:"10"`

	// PurgeOutboxOnLogout drops unsent actions on logout. Off by default:
	// a queued roadside request is usually worth keeping for the next
	// session on a shared-nothing personal device.
	PurgeOutboxOnLogout bool `env:"ROADASSIST_PURGE_OUTBOX_ON_LOGOUT" envDefault:"false"`
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
