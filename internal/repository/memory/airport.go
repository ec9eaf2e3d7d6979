package memory

import (
	"context"

	"aurejet/internal/domain"
)

// AirportRepository serves the fixed airport list.
type AirportRepository struct {
	airports []domain.Airport
}

// NewAirportRepository creates a new AirportRepository.
func NewAirportRepository() *AirportRepository {
	return &AirportRepository{airports: []domain.Airport{
		{Code: "TEB", Name: "Teterboro", Lat: 40.8501, Lng: -74.0608},
		{Code: "VNY", Name: "Van Nuys", Lat: 34.2098, Lng: -118.4897},
		{Code: "OPF", Name: "Miami-Opa Locka", Lat: 25.9070, Lng: -80.2784},
		{Code: "MIA", Name: "Miami", Lat: 25.7959, Lng: -80.2870},
		{Code: "ASE", Name: "Aspen", Lat: 39.2232, Lng: -106.8688},
		{Code: "BQN", Name: "Aguadilla", Lat: 18.4949, Lng: -67.1294},
	}}
}

// GetAll retrieves every known airport.
func (r *AirportRepository) GetAll(ctx context.Context) ([]domain.Airport, error) {
	result := make([]domain.Airport, len(r.airports))
	copy(result, r.airports)
	return result, nil
}
