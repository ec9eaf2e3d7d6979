package repository

import (
	"context"

	"aurejet/internal/domain"
)

// FlightRepository is a read-only lookup over the flight catalog.
type FlightRepository interface {
	// GetByID retrieves a flight by ID.
	// Returns ErrNotFound if the flight is not listed.
	GetByID(ctx context.Context, id string) (*domain.Flight, error)

	// GetAll retrieves every listed flight in catalog order.
	GetAll(ctx context.Context) ([]*domain.Flight, error)
}

// AirportRepository lists the airports the feed can personalize around.
type AirportRepository interface {
	// GetAll retrieves every known airport.
	GetAll(ctx context.Context) ([]domain.Airport, error)
}
