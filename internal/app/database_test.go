package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aurejet/internal/config"
)

func TestCatalogDSN(t *testing.T) {
	dsn := catalogDSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "catalog",
		Password: "secret",
		DBName:   "aurejet",
		SSLMode:  "require",
	})

	assert.Equal(t, "host=db.internal port=5433 user=catalog password=secret dbname=aurejet sslmode=require application_name=aurejet-catalog", dsn)
}

func TestCatalogDriver(t *testing.T) {
	assert.Equal(t, "nrpostgres", catalogDriver(true))
	assert.Equal(t, "postgres", catalogDriver(false))
}
