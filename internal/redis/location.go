package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const airportLocationKey = "airports:locations"

// AirportLocation is an airport's position with its distance from a query point.
type AirportLocation struct {
	Code       string
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// LocationStore keeps the airport GEO index in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// IndexAirport stores an airport's position using GEOADD.
func (s *LocationStore) IndexAirport(ctx context.Context, code string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, airportLocationKey, &redis.GeoLocation{
		Name:      code,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearestAirports returns airports within radiusKm, nearest first.
func (s *LocationStore) FindNearestAirports(ctx context.Context, lat, lng, radiusKm float64) ([]AirportLocation, error) {
	results, err := s.client.GeoRadius(ctx, airportLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]AirportLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, AirportLocation{
			Code:       r.Name,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return locations, nil
}
