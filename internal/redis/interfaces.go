package redis

import (
	"context"
	"time"
)

// FlightCacheInterface defines the interface for flight record caching.
type FlightCacheInterface interface {
	GetFlight(ctx context.Context, flightID string) (*CachedFlight, error)
	SetFlight(ctx context.Context, flight *CachedFlight) error
}

// LocationStoreInterface defines the interface for airport GEO lookups.
type LocationStoreInterface interface {
	IndexAirport(ctx context.Context, code string, lat, lng float64) error
	FindNearestAirports(ctx context.Context, lat, lng, radiusKm float64) ([]AirportLocation, error)
}

// LockStoreInterface defines the interface for distributed charge locking.
type LockStoreInterface interface {
	AcquireChargeLock(ctx context.Context, idempotencyKey string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseChargeLock(ctx context.Context, idempotencyKey, token string) (released bool, err error)
}

// Ensure concrete types implement interfaces.
var (
	_ FlightCacheInterface   = (*CacheStore)(nil)
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
