package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles flight record caching in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultFlightCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// DefaultFlightCacheTTL applies when no TTL is configured.
const DefaultFlightCacheTTL = 30 * time.Second

const flightCachePrefix = "cache:flight:"

// CachedFlight represents a cached flight record.
type CachedFlight struct {
	ID                 string    `json:"id"`
	OriginCode         string    `json:"origin_code"`
	OriginName         string    `json:"origin_name"`
	DestinationCode    string    `json:"destination_code"`
	DestinationName    string    `json:"destination_name"`
	DepartureWindow    string    `json:"departure_window"`
	DepartsAt          time.Time `json:"departs_at"`
	Aircraft           string    `json:"aircraft"`
	Seats              int       `json:"seats"`
	PriceCents         int64     `json:"price_cents"`
	Badge              string    `json:"badge,omitempty"`
	Operator           string    `json:"operator"`
	RangeNm            int       `json:"range_nm"`
	BaggageKg          int       `json:"baggage_kg"`
	BagCapacity        int       `json:"bag_capacity"`
	WiFi               bool      `json:"wifi"`
	PetsAllowed        bool      `json:"pets_allowed"`
	Catering           bool      `json:"catering"`
	Popularity         int       `json:"popularity"`
	CancellationPolicy string    `json:"cancellation_policy"`
}

// GetFlight retrieves a flight from cache. Returns nil, nil on a miss.
func (s *CacheStore) GetFlight(ctx context.Context, flightID string) (*CachedFlight, error) {
	data, err := s.client.Get(ctx, flightCachePrefix+flightID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var flight CachedFlight
	if err := json.Unmarshal(data, &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

// SetFlight stores a flight in cache.
func (s *CacheStore) SetFlight(ctx context.Context, flight *CachedFlight) error {
	data, err := json.Marshal(flight)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, flightCachePrefix+flight.ID, data, s.ttl).Err()
}

// InvalidateFlight removes a flight from cache.
func (s *CacheStore) InvalidateFlight(ctx context.Context, flightID string) error {
	return s.client.Del(ctx, flightCachePrefix+flightID).Err()
}
