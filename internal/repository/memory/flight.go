package memory

import (
	"context"
	"sync"
	"time"

	"aurejet/internal/domain"
	"aurejet/internal/repository"
)

// FlightRepository serves the static launch catalog from memory. Departure
// times are anchored to the clock's calendar day and re-seeded when it rolls over.
type FlightRepository struct {
	clock func() time.Time

	mu      sync.Mutex
	day     time.Time
	flights []*domain.Flight
	byID    map[string]*domain.Flight
}

// NewFlightRepository builds the static catalog against clock. A nil clock uses time.Now.
func NewFlightRepository(clock func() time.Time) *FlightRepository {
	if clock == nil {
		clock = time.Now
	}
	return &FlightRepository{clock: clock}
}

// current returns the catalog for the clock's day, re-seeding on a day change.
func (r *FlightRepository) current() ([]*domain.Flight, map[string]*domain.Flight) {
	now := r.clock()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.flights == nil || !day.Equal(r.day) {
		r.flights = seedFlights(day)
		r.byID = make(map[string]*domain.Flight, len(r.flights))
		for _, f := range r.flights {
			r.byID[f.ID] = f
		}
		r.day = day
	}
	return r.flights, r.byID
}

// GetByID retrieves a flight by ID.
func (r *FlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	_, byID := r.current()
	flight, ok := byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy so callers cannot mutate the catalog.
	copy := *flight
	return &copy, nil
}

// GetAll retrieves all flights in catalog order.
func (r *FlightRepository) GetAll(ctx context.Context) ([]*domain.Flight, error) {
	flights, _ := r.current()
	result := make([]*domain.Flight, 0, len(flights))
	for _, f := range flights {
		copy := *f
		result = append(result, &copy)
	}
	return result, nil
}

func seedFlights(now time.Time) []*domain.Flight {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysToSunday := (7 - int(today.Weekday())) % 7
	if daysToSunday == 0 {
		daysToSunday = 7
	}
	sunday := today.AddDate(0, 0, daysToSunday)

	return []*domain.Flight{
		{
			ID:                 "leg-101",
			OriginCode:         "TEB",
			OriginName:         "Teterboro",
			DestinationCode:    "MIA",
			DestinationName:    "Miami",
			DepartureWindow:    "Today, 18:40 - 19:30",
			DepartsAt:          today.Add(18*time.Hour + 40*time.Minute),
			Aircraft:           "Gulfstream G550",
			Seats:              8,
			PriceCents:         1890000,
			Badge:              "Invite-only",
			Operator:           "Atlantic Crown Aviation",
			RangeNm:            6750,
			BaggageKg:          180,
			BagCapacity:        10,
			WiFi:               true,
			PetsAllowed:        true,
			Catering:           true,
			Popularity:         94,
			CancellationPolicy: "Full refund up to 24 hours before departure. 50% credit within 24 hours.",
		},
		{
			ID:                 "leg-206",
			OriginCode:         "VNY",
			OriginName:         "Van Nuys",
			DestinationCode:    "ASE",
			DestinationName:    "Aspen",
			DepartureWindow:    "Tomorrow, 08:10 - 09:00",
			DepartsAt:          today.AddDate(0, 0, 1).Add(8*time.Hour + 10*time.Minute),
			Aircraft:           "Challenger 650",
			Seats:              7,
			PriceCents:         1420000,
			Operator:           "Sierra Summit Jets",
			RangeNm:            4000,
			BaggageKg:          140,
			BagCapacity:        6,
			WiFi:               true,
			PetsAllowed:        false,
			Catering:           true,
			Popularity:         81,
			CancellationPolicy: "Non-refundable within 48 hours of departure. Transferable once.",
		},
		{
			ID:                 "leg-332",
			OriginCode:         "OPF",
			OriginName:         "Miami-Opa Locka",
			DestinationCode:    "BQN",
			DestinationName:    "Aguadilla",
			DepartureWindow:    "Sun, 14:20 - 15:15",
			DepartsAt:          sunday.Add(14*time.Hour + 20*time.Minute),
			Aircraft:           "Praetor 600",
			Seats:              6,
			PriceCents:         1265000,
			Operator:           "Caribe Executive Air",
			RangeNm:            3900,
			BaggageKg:          110,
			BagCapacity:        5,
			WiFi:               false,
			PetsAllowed:        true,
			Catering:           false,
			Popularity:         67,
			CancellationPolicy: "Full refund up to 72 hours before departure.",
		},
	}
}
