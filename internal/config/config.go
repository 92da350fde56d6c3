// Package config loads the server configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionSecret signs the client id cookie.
	SessionSecret string `env:"SESSION_SECRET, required"`
	// CookieSecure is on by default; disable only for local development.
	CookieSecure bool `env:"COOKIE_SECURE, default=true"`
	BcryptCost   int  `env:"BCRYPT_COST,   default=12"`

	Backend BackendConfig
	Storage StorageConfig
}

type BackendConfig struct {
	// BaseURL is the backend root; its routes carry no /api prefix.
	BaseURL       string        `env:"API_BASE_URL,   default=http://localhost:8080"`
	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT, default=3s"`
	Timeout       time.Duration `env:"API_TIMEOUT,    default=10s"`
	// ForceDemo skips the health probe and runs against the demo account.
	ForceDemo bool `env:"DEMO_MODE, default=false"`
}

type StorageConfig struct {
	Driver       string        `env:"STORAGE_DRIVER, default=sqlite"`
	DatabasePath string        `env:"DATABASE_PATH,  default=village-rental.db"`
	RedisAddr    string        `env:"REDIS_ADDR,     default=localhost:6379"`
	RedisDB      int           `env:"REDIS_DB,       default=0"`
	RedisTTL     time.Duration `env:"REDIS_TTL,      default=720h"`
}

// Load reads a .env file when one exists and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverRedis, c.Storage.Driver)
	}
	if c.Backend.HealthTimeout <= 0 {
		return errors.New("HEALTH_TIMEOUT must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
