package tests

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"aurejet/internal/domain"
	"aurejet/internal/service"
)

type checkoutHarness struct {
	flights  *MockFlightRepository
	gateway  *MockGateway
	sched    *ManualScheduler
	checkout *service.CheckoutService
	clock    time.Time
}

func newCheckoutHarness(t *testing.T, gateway service.PaymentGateway) *checkoutHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &checkoutHarness{
		flights: NewMockFlightRepository(testFlight("leg-101", 8, 1890000)),
		sched:   &ManualScheduler{},
		clock:   fixtureNow,
	}
	if mock, ok := gateway.(*MockGateway); ok {
		h.gateway = mock
	}

	catalog := service.NewCatalogService(service.CatalogDeps{
		Flights:  h.flights,
		Airports: NewMockAirportRepository(),
		Logger:   logger,
		Now:      func() time.Time { return h.clock },
	})
	h.checkout = service.NewCheckoutService(catalog, service.NewReceiptService(), service.NewNotificationService(logger), service.CheckoutConfig{
		Gateway:         gateway,
		Keys:            &SequentialKeys{},
		Scheduler:       h.sched,
		ProcessingDelay: service.DefaultProcessingDelay,
		SessionTTL:      30 * time.Minute,
		Logger:          logger,
		Now:             func() time.Time { return h.clock },
	})
	t.Cleanup(h.checkout.Shutdown)
	return h
}

func (h *checkoutHarness) start(t *testing.T) *service.CheckoutSnapshot {
	t.Helper()
	session, err := h.checkout.StartCheckout(context.Background(), service.StartCheckoutRequest{
		FlightID: "leg-101",
		Traveler: validTraveler(),
	})
	if err != nil {
		t.Fatalf("unexpected error starting checkout: %v", err)
	}
	return session
}

// ──────────────────────────────────────────────
// 1. PAYMENT RETRY SEMANTICS
// ──────────────────────────────────────────────

func TestCheckout_DeclineThenApprove_ReusesIdempotencyKey(t *testing.T) {
	t.Parallel()

	gateway := NewMockGateway()
	gateway.Approve = false
	h := newCheckoutHarness(t, gateway)
	session := h.start(t)
	ctx := context.Background()

	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.sched.LastDelay() != service.DefaultProcessingDelay {
		t.Errorf("expected processing delay %v, got %v", service.DefaultProcessingDelay, h.sched.LastDelay())
	}
	h.sched.FireAll()

	failed, err := h.checkout.Get(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Payment.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", failed.Payment.Status)
	}
	if failed.Confirmation != nil {
		t.Error("expected no confirmation after a decline")
	}

	gateway.Approve = true
	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("retry should be accepted from FAILED: %v", err)
	}
	h.sched.FireAll()

	done, err := h.checkout.Get(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Payment.Status != domain.PaymentStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", done.Payment.Status)
	}
	if done.Confirmation == nil || done.Confirmation.Attempts != 2 {
		t.Fatalf("expected a confirmation recording 2 attempts, got %+v", done.Confirmation)
	}

	requests := gateway.Requests()
	if len(requests) != 2 {
		t.Fatalf("expected 2 charges, got %d", len(requests))
	}
	if requests[0].IdempotencyKey != requests[1].IdempotencyKey {
		t.Errorf("retry changed the idempotency key: %s -> %s", requests[0].IdempotencyKey, requests[1].IdempotencyKey)
	}
	if requests[0].Attempt != 1 || requests[1].Attempt != 2 {
		t.Errorf("expected attempts 1 and 2, got %d and %d", requests[0].Attempt, requests[1].Attempt)
	}
}

func TestCheckout_AddOnChangesChargedAmount(t *testing.T) {
	t.Parallel()

	gateway := NewMockGateway()
	h := newCheckoutHarness(t, gateway)
	session := h.start(t)
	ctx := context.Background()

	if _, err := h.checkout.SetAddOn(ctx, session.SessionID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.sched.FireAll()

	requests := gateway.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(requests))
	}
	// 1,890,000 + 157,815 tax + 65,000 concierge
	if requests[0].AmountCents != 2112815 {
		t.Errorf("expected 2112815 cents charged, got %d", requests[0].AmountCents)
	}
}

// ──────────────────────────────────────────────
// 2. CONCURRENCY
// ──────────────────────────────────────────────

func TestCheckout_ConcurrentSubmits_OnlyOneAccepted(t *testing.T) {
	t.Parallel()

	h := newCheckoutHarness(t, NewMockGateway())
	session := h.start(t)

	const callers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.checkout.Submit(context.Background(), session.SessionID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, service.ErrSubmitNotAllowed):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("expected exactly 1 accepted submit, got %d", accepted)
	}
	if rejected != callers-1 {
		t.Errorf("expected %d rejected submits, got %d", callers-1, rejected)
	}
	if h.sched.Pending() != 1 {
		t.Errorf("expected 1 scheduled resolution, got %d", h.sched.Pending())
	}
}

func TestCheckout_EditsLockedWhileProcessing(t *testing.T) {
	t.Parallel()

	h := newCheckoutHarness(t, NewMockGateway())
	session := h.start(t)
	ctx := context.Background()

	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := h.checkout.SetAddOn(ctx, session.SessionID, true); !errors.Is(err, service.ErrCheckoutLocked) {
		t.Errorf("expected ErrCheckoutLocked for add-on, got %v", err)
	}
	if _, err := h.checkout.SetPaymentMethod(ctx, session.SessionID, domain.PaymentMethodWalletCredits); !errors.Is(err, service.ErrCheckoutLocked) {
		t.Errorf("expected ErrCheckoutLocked for method, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. TEARDOWN
// ──────────────────────────────────────────────

func TestCheckout_CloseWhileProcessing_IgnoresLateResolution(t *testing.T) {
	t.Parallel()

	gateway := NewMockGateway()
	h := newCheckoutHarness(t, gateway)
	session := h.start(t)
	ctx := context.Background()

	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.checkout.Close(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A timer that lost the race with Stop still fires.
	h.sched.FireStale()

	if gateway.ChargeCallCount != 0 {
		t.Errorf("expected no charge after close, got %d", gateway.ChargeCallCount)
	}
	if _, err := h.checkout.Get(ctx, session.SessionID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCheckout_SweepSkipsProcessingSessions(t *testing.T) {
	t.Parallel()

	h := newCheckoutHarness(t, NewMockGateway())
	idle := h.start(t)
	busy := h.start(t)
	ctx := context.Background()

	if _, err := h.checkout.Submit(ctx, busy.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := h.checkout.Sweep(ctx, fixtureNow.Add(31*time.Minute)); n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
	if _, err := h.checkout.Get(ctx, idle.SessionID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected idle session to expire, got %v", err)
	}
	if _, err := h.checkout.Get(ctx, busy.SessionID); err != nil {
		t.Errorf("expected processing session to survive, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. CATALOG DRIFT
// ──────────────────────────────────────────────

func TestCheckout_FlightDelisted_NewSessionsFail(t *testing.T) {
	t.Parallel()

	h := newCheckoutHarness(t, NewMockGateway())
	existing := h.start(t)

	h.flights.RemoveFlight("leg-101")

	_, err := h.checkout.StartCheckout(context.Background(), service.StartCheckoutRequest{
		FlightID: "leg-101",
		Traveler: validTraveler(),
	})
	if !errors.Is(err, service.ErrFlightUnavailable) {
		t.Fatalf("expected ErrFlightUnavailable, got %v", err)
	}

	// Sessions already open keep the flight they started with.
	session, err := h.checkout.Get(context.Background(), existing.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Fare.BaseFareCents != 1890000 {
		t.Errorf("expected base fare 1890000, got %d", session.Fare.BaseFareCents)
	}
}

func TestCheckout_RepositoryTimeout_Propagates(t *testing.T) {
	t.Parallel()

	h := newCheckoutHarness(t, NewMockGateway())
	h.flights.GetByIDError = ErrMockTimeout

	_, err := h.checkout.StartCheckout(context.Background(), service.StartCheckoutRequest{
		FlightID: "leg-101",
		Traveler: validTraveler(),
	})
	if !errors.Is(err, ErrMockTimeout) {
		t.Fatalf("expected ErrMockTimeout, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 5. DISTRIBUTED CHARGE LOCK
// ──────────────────────────────────────────────

func TestCheckout_ChargeLockHeldElsewhere_FailsAttemptWithoutCharging(t *testing.T) {
	t.Parallel()

	inner := NewMockGateway()
	locks := NewMockLockStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := newCheckoutHarness(t, service.NewLockingGateway(inner, locks, time.Minute, logger))
	session := h.start(t)
	ctx := context.Background()
	key := session.Payment.IdempotencyKey

	owner := locks.Hold(key, time.Minute)
	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.sched.FireAll()

	failed, _ := h.checkout.Get(ctx, session.SessionID)
	if failed.Payment.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected FAILED while another instance holds the lock, got %s", failed.Payment.Status)
	}
	if inner.ChargeCallCount != 0 {
		t.Errorf("expected no charge while locked, got %d", inner.ChargeCallCount)
	}

	if released, err := locks.ReleaseChargeLock(ctx, key, owner); err != nil || !released {
		t.Fatalf("expected the other holder to release, got released=%v err=%v", released, err)
	}
	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.sched.FireAll()

	done, _ := h.checkout.Get(ctx, session.SessionID)
	if done.Payment.Status != domain.PaymentStatusSucceeded {
		t.Fatalf("expected SUCCEEDED after the lock cleared, got %s", done.Payment.Status)
	}
	if locks.IsLocked(key) {
		t.Error("expected charge lock to be released")
	}
}

func TestCheckout_LockStoreDown_ChargeProceeds(t *testing.T) {
	t.Parallel()

	inner := NewMockGateway()
	locks := NewMockLockStore()
	locks.AcquireError = ErrMockRedisDown
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := newCheckoutHarness(t, service.NewLockingGateway(inner, locks, time.Minute, logger))
	session := h.start(t)
	ctx := context.Background()

	if _, err := h.checkout.Submit(ctx, session.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.sched.FireAll()

	done, _ := h.checkout.Get(ctx, session.SessionID)
	if done.Payment.Status != domain.PaymentStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", done.Payment.Status)
	}
	if locks.ReleaseCallCount != 0 {
		t.Errorf("expected no release for a lock never taken, got %d", locks.ReleaseCallCount)
	}
}
