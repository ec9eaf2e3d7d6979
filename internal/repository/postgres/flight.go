package postgres

import (
	"context"
	"database/sql"
	"errors"

	"aurejet/internal/domain"
	"aurejet/internal/repository"
)

// FlightRepository is a read-only PostgreSQL implementation of repository.FlightRepository.
type FlightRepository struct {
	q Querier
}

// NewFlightRepository creates a new PostgreSQL flight repository.
func NewFlightRepository(db *sql.DB) *FlightRepository {
	return &FlightRepository{q: db}
}

const flightColumns = `
	id, origin_code, origin_name, destination_code, destination_name,
	departure_window, departs_at, aircraft, seats, price_cents,
	COALESCE(badge, ''), operator, range_nm, baggage_kg, bag_capacity,
	wifi, pets_allowed, catering, popularity, cancellation_policy
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(row rowScanner) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(
		&f.ID,
		&f.OriginCode,
		&f.OriginName,
		&f.DestinationCode,
		&f.DestinationName,
		&f.DepartureWindow,
		&f.DepartsAt,
		&f.Aircraft,
		&f.Seats,
		&f.PriceCents,
		&f.Badge,
		&f.Operator,
		&f.RangeNm,
		&f.BaggageKg,
		&f.BagCapacity,
		&f.WiFi,
		&f.PetsAllowed,
		&f.Catering,
		&f.Popularity,
		&f.CancellationPolicy,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves a listed flight by ID.
func (r *FlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1 AND listed`

	flight, err := scanFlight(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return flight, nil
}

// GetAll retrieves all listed flights.
func (r *FlightRepository) GetAll(ctx context.Context) ([]*domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE listed ORDER BY sort_order, id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []*domain.Flight
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, flight)
	}

	return flights, rows.Err()
}

// AirportRepository is a read-only PostgreSQL implementation of repository.AirportRepository.
type AirportRepository struct {
	q Querier
}

// NewAirportRepository creates a new PostgreSQL airport repository.
func NewAirportRepository(db *sql.DB) *AirportRepository {
	return &AirportRepository{q: db}
}

// GetAll retrieves every known airport.
func (r *AirportRepository) GetAll(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT code, name, lat, lng FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var airports []domain.Airport
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.Lat, &a.Lng); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}

	return airports, rows.Err()
}
