package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads the TOML file at path over the defaults, then applies the
// OPCOES_* environment overrides. A missing file leaves the defaults in
// place. The returned Config has not been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.User, "OPCOES_USER")
	setStr(&cfg.LogLevel, "OPCOES_LOG_LEVEL")
	setBool(&cfg.LogPretty, "OPCOES_LOG_PRETTY")

	setStr(&cfg.Store.Driver, "OPCOES_STORE_DRIVER")
	setStr(&cfg.Store.Path, "OPCOES_STORE_PATH")
	setStr(&cfg.Store.DSN, "DATABASE_URL") // hosted deployments
	setStr(&cfg.Store.DSN, "OPCOES_STORE_DSN")
	setInt(&cfg.Store.PoolMaxConns, "OPCOES_STORE_POOL_MAX_CONNS")
	setInt(&cfg.Store.PoolMinConns, "OPCOES_STORE_POOL_MIN_CONNS")
	setBool(&cfg.Store.RunMigrations, "OPCOES_STORE_RUN_MIGRATIONS")

	setStr(&cfg.Quote.BaseURL, "OPCOES_QUOTE_BASE_URL")
	setStr(&cfg.Quote.Token, "OPCOES_QUOTE_TOKEN")
	setDuration(&cfg.Quote.Timeout, "OPCOES_QUOTE_TIMEOUT")

	setStr(&cfg.Server.Addr, "OPCOES_SERVER_ADDR")
	setStringSlice(&cfg.Server.AllowedOrigins, "OPCOES_SERVER_ALLOWED_ORIGINS")

	setInt(&cfg.Alerts.Days, "OPCOES_ALERTS_DAYS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
