package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurejet/internal/repository"
)

// Wednesday.
var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestFlightRepository_GetAll_ReturnsStaticCatalog(t *testing.T) {
	repo := NewFlightRepository(fixedClock)

	flights, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, flights, 3)

	assert.Equal(t, "leg-101", flights[0].ID)
	assert.Equal(t, "TEB -> MIA", flights[0].Route())
	assert.Equal(t, int64(1890000), flights[0].PriceCents)
	assert.Equal(t, 8, flights[0].Seats)
	assert.Equal(t, "leg-206", flights[1].ID)
	assert.Equal(t, "leg-332", flights[2].ID)
}

func TestFlightRepository_DepartureTimesAnchoredToNow(t *testing.T) {
	repo := NewFlightRepository(fixedClock)

	flights, err := repo.GetAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 14, 18, 40, 0, 0, time.UTC), flights[0].DepartsAt)
	assert.Equal(t, time.Date(2026, 10, 15, 8, 10, 0, 0, time.UTC), flights[1].DepartsAt)
	assert.Equal(t, time.Date(2026, 10, 18, 14, 20, 0, 0, time.UTC), flights[2].DepartsAt)
}

func TestFlightRepository_GetByID_UnknownReturnsNotFound(t *testing.T) {
	repo := NewFlightRepository(fixedClock)

	flight, err := repo.GetByID(context.Background(), "leg-999")
	assert.Nil(t, flight)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFlightRepository_GetByID_ReturnsCopy(t *testing.T) {
	repo := NewFlightRepository(fixedClock)

	flight, err := repo.GetByID(context.Background(), "leg-206")
	require.NoError(t, err)
	flight.Seats = 0

	again, err := repo.GetByID(context.Background(), "leg-206")
	require.NoError(t, err)
	assert.Equal(t, 7, again.Seats)
}

func TestFlightRepository_ReseedsWhenDayRollsOver(t *testing.T) {
	now := fixedNow
	repo := NewFlightRepository(func() time.Time { return now })

	flight, err := repo.GetByID(context.Background(), "leg-101")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 14, 18, 40, 0, 0, time.UTC), flight.DepartsAt)

	now = fixedNow.Add(10 * time.Hour)
	flight, err = repo.GetByID(context.Background(), "leg-101")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 14, 18, 40, 0, 0, time.UTC), flight.DepartsAt, "same day keeps the schedule")

	// Saturday: the next Sunday is the following day.
	now = fixedNow.AddDate(0, 0, 3)
	flights, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 18, 40, 0, 0, time.UTC), flights[0].DepartsAt)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 10, 0, 0, time.UTC), flights[1].DepartsAt)
	assert.Equal(t, time.Date(2026, 10, 18, 14, 20, 0, 0, time.UTC), flights[2].DepartsAt)
}
