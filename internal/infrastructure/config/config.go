package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
)

// Config holds all application configuration.
type Config struct {
	DataDir   string `envconfig:"DATA_DIR"`
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Update    UpdateConfig
	News      NewsConfig
}

// ServerConfig holds HTTP server configuration. The API binds to
// localhost by default; it fronts a desktop launcher, not a public
// service.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7780"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// UpdateConfig holds release update check configuration.
type UpdateConfig struct {
	Enabled bool   `envconfig:"UPDATE_CHECK_ENABLED" default:"true"`
	URL     string `envconfig:"UPDATE_CHECK_URL" default:"https://api.github.com/repos/toffeegg/flyffu-launcher/releases/latest"`
}

// NewsConfig holds game news feed configuration.
type NewsConfig struct {
	Enabled bool   `envconfig:"NEWS_ENABLED" default:"true"`
	URL     string `envconfig:"NEWS_URL" default:"https://universe.flyff.com/news"`
}

// Load loads configuration from environment variables. DATA_DIR falls
// back to the per-user config directory when unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DataDir == "" {
		dir, err := paths.DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	return &cfg, nil
}

// Default returns default configuration with the data dir unset; callers
// that bypass Load must fill it in.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7780",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		Update: UpdateConfig{
			Enabled: true,
			URL:     "https://api.github.com/repos/toffeegg/flyffu-launcher/releases/latest",
		},
		News: NewsConfig{
			Enabled: true,
			URL:     "https://universe.flyff.com/news",
		},
	}
}
