package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	NewRelic NewRelicConfig `envPrefix:"NEW_RELIC_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Checkout CheckoutConfig `envPrefix:"CHECKOUT_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// DatabaseConfig holds PostgreSQL configuration. Only used by the postgres catalog backend.
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	DBName   string `env:"NAME" envDefault:"aurejet"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `env:"APP_NAME" envDefault:"aurejet-booking"`
	LicenseKey string `env:"LICENSE_KEY"`
	Enabled    bool   `env:"ENABLED" envDefault:"false"`
}

// CatalogConfig selects where flight records come from.
type CatalogConfig struct {
	Backend  string        `env:"BACKEND" envDefault:"memory"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

// CheckoutConfig holds payment simulation and session lifecycle settings.
type CheckoutConfig struct {
	ProcessingDelay time.Duration `env:"PROCESSING_DELAY" envDefault:"1200ms"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	KeyStrategy     string        `env:"KEY_STRATEGY" envDefault:"legacy"`
}

// AuthConfig holds guest token settings for the auth gateway stub.
type AuthConfig struct {
	TokenSecret string        `env:"TOKEN_SECRET" envDefault:"aurejet-dev-secret"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

const (
	CatalogBackendMemory   = "memory"
	CatalogBackendPostgres = "postgres"

	KeyStrategyLegacy = "legacy"
	KeyStrategyUUID   = "uuid"
)

// Load loads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Backend {
	case CatalogBackendMemory, CatalogBackendPostgres:
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.Catalog.Backend)
	}

	switch c.Checkout.KeyStrategy {
	case KeyStrategyLegacy, KeyStrategyUUID:
	default:
		return fmt.Errorf("unknown CHECKOUT_KEY_STRATEGY %q", c.Checkout.KeyStrategy)
	}

	if c.Checkout.ProcessingDelay < 0 {
		return fmt.Errorf("CHECKOUT_PROCESSING_DELAY must not be negative")
	}

	if c.Checkout.SweepInterval <= 0 {
		return fmt.Errorf("CHECKOUT_SWEEP_INTERVAL must be positive")
	}

	return nil
}
