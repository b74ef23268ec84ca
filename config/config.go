// Package config holds the opc configuration: a TOML file merged over
// defaults, with OPCOES_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverJSONL    = "jsonl"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	User      string       `toml:"user"`
	LogLevel  string       `toml:"log_level"`
	LogPretty bool         `toml:"log_pretty"`
	Store     StoreConfig  `toml:"store"`
	Quote     QuoteConfig  `toml:"quote"`
	Server    ServerConfig `toml:"server"`
	Alerts    AlertsConfig `toml:"alerts"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"` // jsonl and sqlite
	DSN           string `toml:"dsn"`  // postgres
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// QuoteConfig configures the quote provider used to fill the underlying price.
type QuoteConfig struct {
	BaseURL string   `toml:"base_url"`
	Token   string   `toml:"token"`
	Timeout duration `toml:"timeout"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AlertsConfig tunes the expiration alerts of the dashboard.
type AlertsConfig struct {
	Days int `toml:"days"`
}

// duration wraps time.Duration so the TOML decoder can parse "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		User:     "local",
		LogLevel: "info",
		Store: StoreConfig{
			Driver:        DriverJSONL,
			Path:          "opcoes.jsonl",
			PoolMaxConns:  4,
			PoolMinConns:  0,
			RunMigrations: true,
		},
		Quote: QuoteConfig{
			BaseURL: "https://brapi.dev/api",
			Timeout: duration{10 * time.Second},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Alerts: AlertsConfig{Days: 5},
	}
}

// QuoteTimeout is the timeout of a quote request.
func (c *Config) QuoteTimeout() time.Duration { return c.Quote.Timeout.Duration }

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.User) == "" {
		errs = append(errs, "user must not be empty")
	}

	switch c.Store.Driver {
	case DriverJSONL, DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Sprintf("store: path is required for driver %q", c.Store.Driver))
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			errs = append(errs, "store: dsn is required for driver \"postgres\"")
		}
		if c.Store.PoolMaxConns < 1 {
			errs = append(errs, "store: pool_max_conns must be >= 1")
		}
		if c.Store.PoolMinConns < 0 {
			errs = append(errs, "store: pool_min_conns must be >= 0")
		}
		if c.Store.PoolMinConns > c.Store.PoolMaxConns {
			errs = append(errs, "store: pool_min_conns must not exceed pool_max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("store: unknown driver %q, want jsonl, sqlite or postgres", c.Store.Driver))
	}

	if c.Quote.Timeout.Duration <= 0 {
		errs = append(errs, "quote: timeout must be > 0")
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server: addr must not be empty")
	}
	if c.Alerts.Days < 0 {
		errs = append(errs, "alerts: days must be >= 0")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}
