package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/GriffinCanCode/modxel/internal/shared/paths"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// ServerConfig holds connector transport configuration.
type ServerConfig struct {
	ConnectorPath string   `toml:"connector_path" envconfig:"MODXEL_CONNECTOR_PATH"`
	LoginPath     string   `toml:"login_path" envconfig:"MODXEL_LOGIN_PATH"`
	SessionCookie string   `toml:"session_cookie" envconfig:"MODXEL_SESSION_COOKIE"`
	Timeout       Duration `toml:"timeout" envconfig:"MODXEL_TIMEOUT"`
	UserAgent     string   `toml:"user_agent" envconfig:"MODXEL_USER_AGENT"`

	// BreakerFailures enables the circuit breaker; 0 sends every request
	BreakerFailures int      `toml:"breaker_failures" envconfig:"MODXEL_BREAKER_FAILURES"`
	BreakerCooldown Duration `toml:"breaker_cooldown" envconfig:"MODXEL_BREAKER_COOLDOWN"`
}

// StoreConfig holds settings-file configuration.
type StoreConfig struct {
	SettingsPath string `toml:"settings_path" envconfig:"MODXEL_SETTINGS"`
}

// WorkspaceConfig holds buffer workspace configuration.
type WorkspaceConfig struct {
	StateDir   string `toml:"state_dir" envconfig:"MODXEL_WORKSPACE"`
	ScratchDir string `toml:"scratch_dir" envconfig:"MODXEL_SCRATCH_DIR"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `toml:"level" envconfig:"LOG_LEVEL"`
	Development bool   `toml:"development" envconfig:"LOG_DEV"`
}

// RateLimitConfig holds client-side request rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second" envconfig:"MODXEL_RATE_LIMIT_RPS"`
	Burst             int     `toml:"burst" envconfig:"MODXEL_RATE_LIMIT_BURST"`
}

// MetricsConfig holds metrics export configuration.
type MetricsConfig struct {
	// Textfile is written in the node-exporter textfile format when set
	Textfile string `toml:"textfile" envconfig:"MODXEL_METRICS_TEXTFILE"`
}

// Duration is a time.Duration read from strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load builds configuration from defaults, the optional TOML file at path,
// then environment variables. An empty path skips the file; a missing file
// at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ConnectorPath: "/connectors/index.php",
			LoginPath:     "/connectors/",
			SessionCookie: "PHPSESSID",
			Timeout:       Duration{30 * time.Second},
			UserAgent:     "modxel/1.0",

			BreakerCooldown: Duration{30 * time.Second},
		},
		Store: StoreConfig{
			SettingsPath: paths.SettingsFile(),
		},
		Workspace: WorkspaceConfig{
			StateDir:   paths.StateDir(),
			ScratchDir: paths.ScratchDir(),
		},
		Logging: LogConfig{
			Level:       "warn",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             1,
		},
	}
}

// Validate checks invariants the rest of the application relies on.
func (c *Config) Validate() error {
	switch {
	case c.Server.ConnectorPath == "":
		return errors.New("config: server.connector_path cannot be empty")
	case c.Server.LoginPath == "":
		return errors.New("config: server.login_path cannot be empty")
	case c.Server.SessionCookie == "":
		return errors.New("config: server.session_cookie cannot be empty")
	case c.Server.Timeout.Duration <= 0:
		return errors.New("config: server.timeout must be positive")
	case c.Server.BreakerFailures < 0:
		return errors.New("config: server.breaker_failures cannot be negative")
	case c.RateLimit.RequestsPerSecond < 0:
		return errors.New("config: rate_limit.requests_per_second cannot be negative")
	case c.Store.SettingsPath == "":
		return errors.New("config: store.settings_path cannot be empty")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = paths.ConfigFile()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
