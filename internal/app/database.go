package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/newrelic/go-agent/v3/integrations/nrpq" // Registers "nrpostgres" driver
	"github.com/newrelic/go-agent/v3/newrelic"

	"aurejet/internal/config"
)

// catalogPool sizes the flight catalog connection pool.
var catalogPool = struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}{maxOpen: 20, maxIdle: 10, maxLifetime: 30 * time.Minute, maxIdleTime: 5 * time.Minute}

// NewDatabase opens the PostgreSQL flight catalog.
// With a New Relic app it uses the nrpostgres driver so catalog queries are traced.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig, nrApp *newrelic.Application) (*sql.DB, error) {
	driver := catalogDriver(nrApp != nil)

	db, err := sql.Open(driver, catalogDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open flight catalog with %s: %w", driver, err)
	}

	db.SetMaxOpenConns(catalogPool.maxOpen)
	db.SetMaxIdleConns(catalogPool.maxIdle)
	db.SetConnMaxLifetime(catalogPool.maxLifetime)
	db.SetConnMaxIdleTime(catalogPool.maxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping flight catalog %s@%s: %w", cfg.DBName, cfg.Host, err)
	}

	return db, nil
}

func catalogDriver(traced bool) string {
	if traced {
		return "nrpostgres"
	}
	return "postgres"
}

func catalogDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=aurejet-catalog",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}
