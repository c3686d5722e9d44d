package config

import (
	"fmt"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Display modes.
const (
	ModeSkin   = "skin"
	ModeRemote = "remote"
)

// Config is the full server configuration, read from the environment.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	VM         VMConfig
	SessionAPI SessionAPIConfig
}

// ServerConfig is the listener.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// CORSOrigins is a comma-separated allow list; empty means any origin.
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig is the per-IP token bucket.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// VMConfig drives the view-state controller.
type VMConfig struct {
	Mode           string        `envconfig:"VM_MODE" default:"skin"`
	// DefaultOS empty selects the first catalog entry.
	DefaultOS      string        `envconfig:"VM_DEFAULT_OS"`
	InitialURL     string        `envconfig:"VM_INITIAL_URL" default:"https://www.google.com"`
	StatsInterval  time.Duration `envconfig:"VM_STATS_INTERVAL" default:"2s"`
	StatsHistory   int           `envconfig:"VM_STATS_HISTORY" default:"30"`
	CatalogPath    string        `envconfig:"VM_CATALOG_PATH"`
	AllowDownloads bool          `envconfig:"VM_ALLOW_DOWNLOADS" default:"true"`
}

// SessionAPIConfig holds the remote session service settings (remote mode only).
type SessionAPIConfig struct {
	BaseURL string        `envconfig:"SESSION_API_URL" default:"https://api.browserling.com/v1"`
	Token   string        `envconfig:"SESSION_API_TOKEN"`
	Browser string        `envconfig:"SESSION_API_BROWSER" default:"chrome"`
	Timeout time.Duration `envconfig:"SESSION_API_TIMEOUT" default:"15s"`
	Retries int           `envconfig:"SESSION_API_RETRIES" default:"0"`
	RPS     float64       `envconfig:"SESSION_API_RPS" default:"0"`
}

// Load reads the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load with Default as the fallback for a bad environment.
func LoadOrDefault() *Config {
	if cfg, err := Load(); err == nil {
		return cfg
	}
	return Default()
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.VM.Mode != ModeSkin && c.VM.Mode != ModeRemote {
		return fmt.Errorf("VM_MODE %q is neither %q nor %q", c.VM.Mode, ModeSkin, ModeRemote)
	}
	if c.VM.StatsInterval <= 0 {
		return fmt.Errorf("VM_STATS_INTERVAL must be positive, got %s", c.VM.StatsInterval)
	}
	if c.VM.StatsHistory < 1 {
		return fmt.Errorf("VM_STATS_HISTORY must be at least 1, got %d", c.VM.StatsHistory)
	}
	if c.VM.Mode == ModeRemote && c.SessionAPI.BaseURL == "" {
		return fmt.Errorf("SESSION_API_URL is required when VM_MODE=%s", ModeRemote)
	}
	return nil
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// Default mirrors the struct tag defaults.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8000", Host: "0.0.0.0"},
		Logging:   LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 100, Burst: 200, Enabled: true},
		VM: VMConfig{
			Mode:           ModeSkin,
			InitialURL:     "https://www.google.com",
			StatsInterval:  2 * time.Second,
			StatsHistory:   30,
			AllowDownloads: true,
		},
		SessionAPI: SessionAPIConfig{
			BaseURL: "https://api.browserling.com/v1",
			Browser: "chrome",
			Timeout: 15 * time.Second,
		},
	}
}
