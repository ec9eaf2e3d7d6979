package tests

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"aurejet/internal/domain"
	"aurejet/internal/redis"
	"aurejet/internal/repository"
	"aurejet/internal/service"
)

// ──────────────────────────────────────────────
// MOCK FLIGHT REPOSITORY
// ──────────────────────────────────────────────

// MockFlightRepository is a mock implementation of FlightRepository.
type MockFlightRepository struct {
	mu      sync.RWMutex
	flights []*domain.Flight

	// Counters for verification
	GetByIDCallCount int32
	GetAllCallCount  int32

	// Error injection
	GetByIDError error
	GetAllError  error
}

// NewMockFlightRepository creates a new mock flight repository.
func NewMockFlightRepository(flights ...*domain.Flight) *MockFlightRepository {
	return &MockFlightRepository{flights: flights}
}

// AddFlight lists a flight.
func (m *MockFlightRepository) AddFlight(flight *domain.Flight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights = append(m.flights, flight)
}

// RemoveFlight delists a flight, as when another buyer books it.
func (m *MockFlightRepository) RemoveFlight(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.flights {
		if f.ID == id {
			m.flights = append(m.flights[:i], m.flights[i+1:]...)
			return
		}
	}
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.flights {
		if f.ID == id {
			copy := *f
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockFlightRepository) GetAll(ctx context.Context) ([]*domain.Flight, error) {
	atomic.AddInt32(&m.GetAllCallCount, 1)
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Flight, 0, len(m.flights))
	for _, f := range m.flights {
		copy := *f
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK AIRPORT REPOSITORY
// ──────────────────────────────────────────────

// MockAirportRepository is a mock implementation of AirportRepository.
type MockAirportRepository struct {
	Airports    []domain.Airport
	GetAllError error
}

// NewMockAirportRepository creates a new mock airport repository.
func NewMockAirportRepository(airports ...domain.Airport) *MockAirportRepository {
	return &MockAirportRepository{Airports: airports}
}

func (m *MockAirportRepository) GetAll(ctx context.Context) ([]domain.Airport, error) {
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	result := make([]domain.Airport, len(m.Airports))
	copy(result, m.Airports)
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK FLIGHT CACHE
// ──────────────────────────────────────────────

// MockFlightCache is a mock implementation of FlightCacheInterface.
type MockFlightCache struct {
	mu      sync.Mutex
	flights map[string]*redis.CachedFlight

	// Counters
	GetCallCount int32
	SetCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockFlightCache creates a new mock flight cache.
func NewMockFlightCache() *MockFlightCache {
	return &MockFlightCache{flights: make(map[string]*redis.CachedFlight)}
}

func (m *MockFlightCache) GetFlight(ctx context.Context, flightID string) (*redis.CachedFlight, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cached, ok := m.flights[flightID]
	if !ok {
		return nil, nil
	}
	copy := *cached
	return &copy, nil
}

func (m *MockFlightCache) SetFlight(ctx context.Context, flight *redis.CachedFlight) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *flight
	m.flights[flight.ID] = &copy
	return nil
}

// Has reports whether a flight is cached.
func (m *MockFlightCache) Has(flightID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.flights[flightID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu      sync.RWMutex
	indexed map[string]redis.AirportLocation

	// Nearest is returned verbatim by FindNearestAirports.
	Nearest []redis.AirportLocation

	// Counters
	IndexCallCount int32
	FindCallCount  int32

	// Error injection
	IndexError error
	FindError  error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{indexed: make(map[string]redis.AirportLocation)}
}

func (m *MockLocationStore) IndexAirport(ctx context.Context, code string, lat, lng float64) error {
	atomic.AddInt32(&m.IndexCallCount, 1)
	if m.IndexError != nil {
		return m.IndexError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed[code] = redis.AirportLocation{Code: code, Lat: lat, Lng: lng}
	return nil
}

func (m *MockLocationStore) FindNearestAirports(ctx context.Context, lat, lng, radiusKm float64) ([]redis.AirportLocation, error) {
	atomic.AddInt32(&m.FindCallCount, 1)
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return the scripted answer (mock doesn't do real geo filtering).
	result := make([]redis.AirportLocation, len(m.Nearest))
	copy(result, m.Nearest)
	return result, nil
}

// IsIndexed checks if an airport was indexed.
func (m *MockLocationStore) IsIndexed(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.indexed[code]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu     sync.Mutex
	locks  map[string]heldLock
	tokens int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

type heldLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]heldLock)}
}

func (m *MockLockStore) AcquireChargeLock(ctx context.Context, idempotencyKey string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, exists := m.locks[idempotencyKey]; exists && time.Now().Before(held.expiry) {
		return "", false, nil // Lock still held.
	}
	return m.takeLocked(idempotencyKey, ttl), true, nil
}

func (m *MockLockStore) ReleaseChargeLock(ctx context.Context, idempotencyKey, token string) (bool, error) {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[idempotencyKey].token != token {
		return false, nil
	}
	delete(m.locks, idempotencyKey)
	return true, nil
}

// Hold takes a key's lock as if another instance were charging it and returns its token.
func (m *MockLockStore) Hold(idempotencyKey string, ttl time.Duration) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.takeLocked(idempotencyKey, ttl)
}

func (m *MockLockStore) takeLocked(idempotencyKey string, ttl time.Duration) string {
	m.tokens++
	token := "owner-" + strconv.Itoa(m.tokens)
	m.locks[idempotencyKey] = heldLock{token: token, expiry: time.Now().Add(ttl)}
	return token
}

// IsLocked checks if a key is locked (for test assertions).
func (m *MockLockStore) IsLocked(idempotencyKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks[idempotencyKey]
	return exists && time.Now().Before(held.expiry)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock payment gateway that records every charge.
type MockGateway struct {
	mu       sync.Mutex
	requests []service.ChargeRequest

	// Control behavior
	Approve   bool
	FailError error

	// Counters
	ChargeCallCount int32
}

// NewMockGateway creates a gateway that approves every charge.
func NewMockGateway() *MockGateway {
	return &MockGateway{Approve: true}
}

func (m *MockGateway) Charge(ctx context.Context, req service.ChargeRequest) (service.ChargeResult, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.FailError != nil {
		return service.ChargeResult{}, m.FailError
	}
	if !m.Approve {
		return service.ChargeResult{DeclineMessage: service.ScriptedDeclineMessage}, nil
	}
	return service.ChargeResult{Approved: true, Reference: "ch_" + req.IdempotencyKey}, nil
}

// Requests returns every charge request seen so far.
func (m *MockGateway) Requests() []service.ChargeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]service.ChargeRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// ──────────────────────────────────────────────
// MANUAL SCHEDULER
// ──────────────────────────────────────────────

// ManualScheduler holds scheduled callbacks until the test fires them.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*scheduled
}

type scheduled struct {
	fn      func()
	delay   time.Duration
	stopped bool
	fired   bool
}

// AfterFunc implements service.Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := &scheduled{fn: fn, delay: d}
	s.pending = append(s.pending, entry)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if entry.fired || entry.stopped {
			return false
		}
		entry.stopped = true
		return true
	}
}

// FireAll runs every pending callback that was not stopped and returns how many ran.
func (s *ManualScheduler) FireAll() int {
	s.mu.Lock()
	var due []*scheduled
	for _, e := range s.pending {
		if !e.stopped && !e.fired {
			e.fired = true
			due = append(due, e)
		}
	}
	s.pending = nil
	s.mu.Unlock()

	for _, e := range due {
		e.fn()
	}
	return len(due)
}

// FireStale runs callbacks even if they were stopped, as a timer that raced its Stop would.
func (s *ManualScheduler) FireStale() int {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, e := range due {
		e.fn()
	}
	return len(due)
}

// Pending returns how many callbacks are waiting to fire.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.pending {
		if !e.stopped && !e.fired {
			n++
		}
	}
	return n
}

// LastDelay returns the delay of the most recent AfterFunc call.
func (s *ManualScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return 0
	}
	return s.pending[len(s.pending)-1].delay
}

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

var fixtureNow = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

// SequentialKeys hands out idem_test_1, idem_test_2, ...
type SequentialKeys struct {
	n atomic.Int32
}

func (k *SequentialKeys) NewKey() string {
	return "idem_test_" + strconv.Itoa(int(k.n.Add(1)))
}

func testFlight(id string, seats int, priceCents int64) *domain.Flight {
	return &domain.Flight{
		ID:              id,
		OriginCode:      "TEB",
		OriginName:      "Teterboro",
		DestinationCode: "MIA",
		DestinationName: "Miami",
		DepartureWindow: "Today, 18:40 - 19:30",
		DepartsAt:       fixtureNow.Add(9*time.Hour + 40*time.Minute),
		Aircraft:        "Gulfstream G550",
		Seats:           seats,
		PriceCents:      priceCents,
		Operator:        "Atlantic Crown Aviation",
		WiFi:            true,
		PetsAllowed:     true,
		Catering:        true,
		Popularity:      94,
	}
}

func validTraveler() domain.TravelerDetails {
	return domain.TravelerDetails{
		LeadName:       "Avery Stone",
		PassengerCount: 4,
		DocumentType:   domain.DocumentTypePassport,
		ContactEmail:   "avery@example.com",
	}
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockRedisDown = errors.New("mock: redis connection refused")
	ErrMockTimeout   = errors.New("mock: operation timeout")
)
