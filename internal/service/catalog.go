package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"aurejet/internal/domain"
	"aurejet/internal/redis"
	"aurejet/internal/repository"
)

// NearestAirportRadiusKm bounds the nearest-airport lookup for the feed.
const NearestAirportRadiusKm = 250.0

const earthRadiusKm = 6371.0

// CatalogService serves flight lookups, the home feed and search.
type CatalogService struct {
	flights   repository.FlightRepository
	airports  repository.AirportRepository
	cache     redis.FlightCacheInterface
	locations redis.LocationStoreInterface
	logger    *slog.Logger
	now       func() time.Time
}

// CatalogDeps holds the optional collaborators of a CatalogService.
// Cache and Locations may be nil when Redis is disabled.
type CatalogDeps struct {
	Flights   repository.FlightRepository
	Airports  repository.AirportRepository
	Cache     redis.FlightCacheInterface
	Locations redis.LocationStoreInterface
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(deps CatalogDeps) *CatalogService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &CatalogService{
		flights:   deps.Flights,
		airports:  deps.Airports,
		cache:     deps.Cache,
		locations: deps.Locations,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

// GetFlight resolves a flight by ID, reading through the cache when one is configured.
// An ID that no longer resolves returns ErrFlightUnavailable.
func (s *CatalogService) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	if flightID == "" {
		return nil, ErrInvalidFlightID
	}

	if s.cache != nil {
		cached, err := s.cache.GetFlight(ctx, flightID)
		if err != nil {
			s.logger.WarnContext(ctx, "flight cache read failed", "flight_id", flightID, "error", err)
		} else if cached != nil {
			return fromCachedFlight(cached), nil
		}
	}

	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFlightUnavailable
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, toCachedFlight(flight)); err != nil {
			s.logger.WarnContext(ctx, "flight cache write failed", "flight_id", flightID, "error", err)
		}
	}

	return flight, nil
}

// ListFlights returns the whole catalog in listing order.
func (s *CatalogService) ListFlights(ctx context.Context) ([]*domain.Flight, error) {
	return s.flights.GetAll(ctx)
}

// IndexAirports loads every airport into the GEO index. No-op without Redis.
func (s *CatalogService) IndexAirports(ctx context.Context) error {
	if s.locations == nil {
		return nil
	}

	airports, err := s.airports.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, a := range airports {
		if err := s.locations.IndexAirport(ctx, a.Code, a.Lat, a.Lng); err != nil {
			return err
		}
	}
	return nil
}

// NearbyAirport is the airport closest to the caller.
type NearbyAirport struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
}

// NearestAirport returns the closest airport within NearestAirportRadiusKm, or nil when none is.
func (s *CatalogService) NearestAirport(ctx context.Context, lat, lng float64) (*NearbyAirport, error) {
	airports, err := s.airports.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]domain.Airport, len(airports))
	for _, a := range airports {
		byCode[a.Code] = a
	}

	if s.locations != nil {
		found, err := s.locations.FindNearestAirports(ctx, lat, lng, NearestAirportRadiusKm)
		if err == nil {
			for _, loc := range found {
				if a, ok := byCode[loc.Code]; ok {
					return &NearbyAirport{Code: a.Code, Name: a.Name, DistanceKm: loc.DistanceKm}, nil
				}
			}
			return nil, nil
		}
		s.logger.WarnContext(ctx, "airport geo lookup failed, using in-process distance", "error", err)
	}

	var best *NearbyAirport
	for _, a := range airports {
		d := haversineKm(lat, lng, a.Lat, a.Lng)
		if d > NearestAirportRadiusKm {
			continue
		}
		if best == nil || d < best.DistanceKm {
			best = &NearbyAirport{Code: a.Code, Name: a.Name, DistanceKm: d}
		}
	}
	return best, nil
}

// FeedChip is one of the home feed's quick filters.
type FeedChip string

const (
	FeedChipToday   FeedChip = "today"
	FeedChipWeekend FeedChip = "weekend"
	FeedChipPets    FeedChip = "pets"
	FeedChipWiFi    FeedChip = "wifi"
)

// FeedChipLabels lists the quick chips in display order.
var FeedChipLabels = []Option{
	{Value: string(FeedChipToday), Label: "Today"},
	{Value: string(FeedChipWeekend), Label: "Weekend"},
	{Value: string(FeedChipPets), Label: "Pets"},
	{Value: string(FeedChipWiFi), Label: "Wi-Fi"},
}

// FeedRequest contains the parameters for the home feed.
type FeedRequest struct {
	Lat  *float64
	Lng  *float64
	Chip FeedChip
}

// FeedResult is the personalized home feed.
type FeedResult struct {
	Eyebrow        string
	NearestAirport *NearbyAirport
	Chips          []Option
	Flights        []*domain.Flight
}

// Feed lists the catalog, departures from the caller's nearest airport first.
func (s *CatalogService) Feed(ctx context.Context, req FeedRequest) (*FeedResult, error) {
	flights, err := s.flights.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if req.Chip != "" {
		filter, err := chipFilter(req.Chip)
		if err != nil {
			return nil, err
		}
		flights = filterFlights(flights, filter, s.now())
	}

	result := &FeedResult{
		Eyebrow: "PERSONALIZED EMPTY LEGS",
		Chips:   FeedChipLabels,
	}

	if req.Lat != nil && req.Lng != nil {
		nearest, err := s.NearestAirport(ctx, *req.Lat, *req.Lng)
		if err != nil {
			return nil, err
		}
		if nearest != nil {
			result.NearestAirport = nearest
			result.Eyebrow = "NEAREST AIRPORT: " + strings.ToUpper(nearest.Name)
			sort.SliceStable(flights, func(i, j int) bool {
				return flights[i].OriginCode == nearest.Code && flights[j].OriginCode != nearest.Code
			})
		}
	}

	result.Flights = flights
	return result, nil
}

func chipFilter(chip FeedChip) (SearchFilter, error) {
	filter := ResetSearchFilter()
	switch chip {
	case FeedChipToday:
		filter.Window = WindowToday
	case FeedChipWeekend:
		filter.Window = WindowWeekend
	case FeedChipPets:
		filter.Preferences = []CabinPreference{PreferencePetsAllowed}
	case FeedChipWiFi:
		filter.Preferences = []CabinPreference{PreferenceWiFi}
	default:
		return SearchFilter{}, invalidValue(FieldChip, "Unknown quick filter.")
	}
	return filter, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func toCachedFlight(f *domain.Flight) *redis.CachedFlight {
	return &redis.CachedFlight{
		ID:                 f.ID,
		OriginCode:         f.OriginCode,
		OriginName:         f.OriginName,
		DestinationCode:    f.DestinationCode,
		DestinationName:    f.DestinationName,
		DepartureWindow:    f.DepartureWindow,
		DepartsAt:          f.DepartsAt,
		Aircraft:           f.Aircraft,
		Seats:              f.Seats,
		PriceCents:         f.PriceCents,
		Badge:              f.Badge,
		Operator:           f.Operator,
		RangeNm:            f.RangeNm,
		BaggageKg:          f.BaggageKg,
		BagCapacity:        f.BagCapacity,
		WiFi:               f.WiFi,
		PetsAllowed:        f.PetsAllowed,
		Catering:           f.Catering,
		Popularity:         f.Popularity,
		CancellationPolicy: f.CancellationPolicy,
	}
}

func fromCachedFlight(c *redis.CachedFlight) *domain.Flight {
	return &domain.Flight{
		ID:                 c.ID,
		OriginCode:         c.OriginCode,
		OriginName:         c.OriginName,
		DestinationCode:    c.DestinationCode,
		DestinationName:    c.DestinationName,
		DepartureWindow:    c.DepartureWindow,
		DepartsAt:          c.DepartsAt,
		Aircraft:           c.Aircraft,
		Seats:              c.Seats,
		PriceCents:         c.PriceCents,
		Badge:              c.Badge,
		Operator:           c.Operator,
		RangeNm:            c.RangeNm,
		BaggageKg:          c.BaggageKg,
		BagCapacity:        c.BagCapacity,
		WiFi:               c.WiFi,
		PetsAllowed:        c.PetsAllowed,
		Catering:           c.Catering,
		Popularity:         c.Popularity,
		CancellationPolicy: c.CancellationPolicy,
	}
}
