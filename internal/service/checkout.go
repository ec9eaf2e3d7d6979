package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"aurejet/internal/domain"
	"aurejet/internal/metrics"
)

const (
	// DefaultSessionTTL is how long an untouched checkout session is kept.
	DefaultSessionTTL = 30 * time.Minute

	statusTextProcessing = "Processing payment and 3D Secure challenge..."
	statusTextSucceeded  = "Payment successful. Booking confirmed."

	actionPay   = "Pay and Confirm"
	actionRetry = "Retry Payment"

	// SecurityNote is shown under the payment method picker.
	SecurityNote = "PCI-compliant processing • 3DS • Encryption"
)

// FlightLookup resolves catalog flights for checkout.
type FlightLookup interface {
	GetFlight(ctx context.Context, flightID string) (*domain.Flight, error)
}

// CheckoutConfig configures a CheckoutService.
type CheckoutConfig struct {
	Gateway         PaymentGateway
	Keys            KeyGenerator
	Scheduler       Scheduler
	ProcessingDelay time.Duration
	SessionTTL      time.Duration
	Logger          *slog.Logger
	Now             func() time.Time
}

// CheckoutService owns one payment state machine per checkout session.
// Lock order is session then machine.
type CheckoutService struct {
	flights       FlightLookup
	receipts      *ReceiptService
	notifications *NotificationService

	gateway   PaymentGateway
	keys      KeyGenerator
	scheduler Scheduler
	delay     time.Duration
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*checkoutSession
}

type checkoutSession struct {
	id      string
	guestID string
	flight  domain.Flight

	mu           sync.Mutex
	traveler     domain.TravelerDetails
	addOn        bool
	method       domain.PaymentMethod
	confirmation *domain.BookingConfirmation
	machine      *PaymentMachine
	createdAt    time.Time
	touchedAt    time.Time
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	flights FlightLookup,
	receipts *ReceiptService,
	notifications *NotificationService,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.Gateway == nil {
		cfg.Gateway = NewScriptedGateway()
	}
	if cfg.Keys == nil {
		cfg.Keys = NewLegacyKeyGenerator()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &CheckoutService{
		flights:       flights,
		receipts:      receipts,
		notifications: notifications,
		gateway:       cfg.Gateway,
		keys:          cfg.Keys,
		scheduler:     cfg.Scheduler,
		delay:         cfg.ProcessingDelay,
		ttl:           cfg.SessionTTL,
		logger:        cfg.Logger,
		now:           cfg.Now,
		sessions:      make(map[string]*checkoutSession),
	}
}

// CheckoutSnapshot is the observable state of a checkout session.
type CheckoutSnapshot struct {
	SessionID     string
	FlightID      string
	Route         string
	Aircraft      string
	GuestID       string
	Traveler      domain.TravelerDetails
	AddOnSelected bool
	PaymentMethod domain.PaymentMethod
	Fare          domain.FareQuote
	Payment       domain.PaymentAttempt
	StatusText    string
	ActionLabel   string
	Confirmation  *domain.BookingConfirmation
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// ValidateTraveler checks the traveler form against the flight's seats.
func (s *CheckoutService) ValidateTraveler(ctx context.Context, flightID string, form domain.TravelerDetails) (ValidationResult, error) {
	flight, err := s.flights.GetFlight(ctx, flightID)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidateTraveler(form, flight.Seats), nil
}

// StartCheckoutRequest contains the parameters for opening a checkout session.
type StartCheckoutRequest struct {
	FlightID string
	Traveler domain.TravelerDetails
	GuestID  string
}

// StartCheckout validates the traveler and opens a session in Idle with a fresh idempotency key.
func (s *CheckoutService) StartCheckout(ctx context.Context, req StartCheckoutRequest) (*CheckoutSnapshot, error) {
	flight, err := s.flights.GetFlight(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}

	if err := ValidateTraveler(req.Traveler, flight.Seats).Err(); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &checkoutSession{
		id:        uuid.New().String(),
		guestID:   req.GuestID,
		flight:    *flight,
		traveler:  normalizeTraveler(req.Traveler),
		method:    domain.PaymentMethodCard,
		createdAt: now,
		touchedAt: now,
	}
	sess.machine = NewPaymentMachine(PaymentMachineConfig{
		IdempotencyKey: s.keys.NewKey(),
		Gateway:        s.gateway,
		Scheduler:      s.scheduler,
		Delay:          s.delay,
		Logger:         s.logger,
		OnResolve: func(attempt domain.PaymentAttempt) {
			s.onPaymentResolved(sess, attempt)
		},
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	metrics.CheckoutSessionsActive.Inc()

	sess.mu.Lock()
	snapshot := s.snapshotLocked(sess, sess.machine.Snapshot())
	sess.mu.Unlock()

	s.logger.InfoContext(ctx, "checkout started",
		"session_id", sess.id, "flight_id", flight.ID, "idempotency_key", snapshot.Payment.IdempotencyKey)
	_ = s.notifications.NotifyCheckoutStarted(ctx, snapshot)

	return snapshot, nil
}

// Get returns the session's current state with a freshly computed fare.
func (s *CheckoutService) Get(ctx context.Context, sessionID string) (*CheckoutSnapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess, sess.machine.Snapshot()), nil
}

// SetAddOn toggles the concierge transfer add-on. Allowed in Idle and Failed.
func (s *CheckoutService) SetAddOn(ctx context.Context, sessionID string, selected bool) (*CheckoutSnapshot, error) {
	return s.mutate(sessionID, func(sess *checkoutSession) {
		sess.addOn = selected
	})
}

// SetPaymentMethod switches the payment method. Allowed in Idle and Failed.
func (s *CheckoutService) SetPaymentMethod(ctx context.Context, sessionID string, method domain.PaymentMethod) (*CheckoutSnapshot, error) {
	switch method {
	case domain.PaymentMethodCard, domain.PaymentMethodBankRequest, domain.PaymentMethodWalletCredits:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	return s.mutate(sessionID, func(sess *checkoutSession) {
		sess.method = method
	})
}

func (s *CheckoutService) mutate(sessionID string, apply func(*checkoutSession)) (*CheckoutSnapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.machine.Disposed() {
		return nil, ErrSessionClosed
	}
	switch sess.machine.Status() {
	case domain.PaymentStatusIdle, domain.PaymentStatusFailed:
	default:
		return nil, ErrCheckoutLocked
	}

	apply(sess)
	sess.touchedAt = s.now()
	return s.snapshotLocked(sess, sess.machine.Snapshot()), nil
}

// Submit starts a payment attempt for the current total under the session's idempotency key.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string) (*CheckoutSnapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	fare := ComputeFare(sess.flight.PriceCents, sess.addOn)
	if err := sess.machine.Submit(fare.TotalCents, sess.method); err != nil {
		return nil, err
	}
	sess.touchedAt = s.now()

	snapshot := s.snapshotLocked(sess, sess.machine.Snapshot())
	s.logger.InfoContext(ctx, "payment submitted",
		"session_id", sess.id,
		"attempt", snapshot.Payment.AttemptNumber,
		"idempotency_key", snapshot.Payment.IdempotencyKey,
		"total_cents", fare.TotalCents,
	)
	return snapshot, nil
}

// Await blocks until the in-flight attempt resolves or ctx ends.
func (s *CheckoutService) Await(ctx context.Context, sessionID string) (*CheckoutSnapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := sess.machine.Await(ctx); err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess, sess.machine.Snapshot()), nil
}

// Receipt returns the booking confirmation once payment has succeeded.
func (s *CheckoutService) Receipt(ctx context.Context, sessionID string) (*domain.BookingConfirmation, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.confirmation == nil {
		return nil, ErrReceiptNotReady
	}
	c := *sess.confirmation
	return &c, nil
}

// Close disposes the session, cancelling any pending payment resolution.
func (s *CheckoutService) Close(ctx context.Context, sessionID string) error {
	sess, err := s.remove(sessionID)
	if err != nil {
		return err
	}

	sess.machine.Dispose()
	metrics.CheckoutSessionsClosedTotal.WithLabelValues(metrics.CloseReasonClient).Inc()
	s.logger.InfoContext(ctx, "checkout closed", "session_id", sessionID)
	return nil
}

// Sweep disposes sessions untouched for longer than the TTL. Sessions with an
// attempt in flight are kept until it resolves.
func (s *CheckoutService) Sweep(ctx context.Context, now time.Time) int {
	var expired []*checkoutSession

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := now.Sub(sess.touchedAt) > s.ttl &&
			sess.machine.Status() != domain.PaymentStatusProcessing
		sess.mu.Unlock()

		if stale {
			delete(s.sessions, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.machine.Dispose()
		metrics.CheckoutSessionsActive.Dec()
		metrics.CheckoutSessionsClosedTotal.WithLabelValues(metrics.CloseReasonExpired).Inc()

		sess.mu.Lock()
		snapshot := s.snapshotLocked(sess, sess.machine.Snapshot())
		sess.mu.Unlock()
		_ = s.notifications.NotifyCheckoutExpired(ctx, snapshot)
	}

	if len(expired) > 0 {
		s.logger.InfoContext(ctx, "expired checkout sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *CheckoutService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx, s.now())
		}
	}
}

// Shutdown disposes every session.
func (s *CheckoutService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*checkoutSession)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.machine.Dispose()
		metrics.CheckoutSessionsActive.Dec()
		metrics.CheckoutSessionsClosedTotal.WithLabelValues(metrics.CloseReasonShutdown).Inc()
	}
}

// ActiveSessions returns the number of open sessions.
func (s *CheckoutService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *CheckoutService) lookup(sessionID string) (*checkoutSession, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *CheckoutService) remove(sessionID string) (*checkoutSession, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	metrics.CheckoutSessionsActive.Dec()
	return sess, nil
}

// onPaymentResolved runs after each attempt settles, outside the machine lock.
func (s *CheckoutService) onPaymentResolved(sess *checkoutSession, attempt domain.PaymentAttempt) {
	ctx := context.Background()

	sess.mu.Lock()
	snapshot := s.snapshotLocked(sess, attempt)
	if attempt.Status == domain.PaymentStatusSucceeded && sess.confirmation == nil {
		confirmation, err := s.receipts.GenerateConfirmation(snapshot)
		if err != nil {
			s.logger.Error("failed to issue booking confirmation", "session_id", sess.id, "error", err)
		} else {
			sess.confirmation = confirmation
			snapshot.Confirmation = confirmation
		}
	}
	sess.mu.Unlock()

	switch attempt.Status {
	case domain.PaymentStatusSucceeded:
		metrics.PaymentAttemptsTotal.WithLabelValues(metrics.OutcomeApproved, string(snapshot.PaymentMethod)).Inc()
		s.logger.Info("payment approved",
			"session_id", sess.id, "attempt", attempt.AttemptNumber, "idempotency_key", attempt.IdempotencyKey)
		if snapshot.Confirmation != nil {
			_ = s.notifications.NotifyBookingConfirmed(ctx, snapshot.Confirmation, snapshot.GuestID)
		}
	case domain.PaymentStatusFailed:
		metrics.PaymentAttemptsTotal.WithLabelValues(metrics.OutcomeDeclined, string(snapshot.PaymentMethod)).Inc()
		s.logger.Warn("payment declined",
			"session_id", sess.id, "attempt", attempt.AttemptNumber, "idempotency_key", attempt.IdempotencyKey)
		_ = s.notifications.NotifyPaymentFailed(ctx, snapshot)
	}
}

func (s *CheckoutService) snapshotLocked(sess *checkoutSession, payment domain.PaymentAttempt) *CheckoutSnapshot {
	snapshot := &CheckoutSnapshot{
		SessionID:     sess.id,
		FlightID:      sess.flight.ID,
		Route:         sess.flight.Route(),
		Aircraft:      sess.flight.Aircraft,
		GuestID:       sess.guestID,
		Traveler:      sess.traveler,
		AddOnSelected: sess.addOn,
		PaymentMethod: sess.method,
		Fare:          ComputeFare(sess.flight.PriceCents, sess.addOn),
		Payment:       payment,
		StatusText:    statusText(payment),
		ActionLabel:   actionPay,
		CreatedAt:     sess.createdAt,
		ExpiresAt:     sess.touchedAt.Add(s.ttl),
	}
	if payment.Status == domain.PaymentStatusFailed {
		snapshot.ActionLabel = actionRetry
	}
	if sess.confirmation != nil {
		c := *sess.confirmation
		snapshot.Confirmation = &c
	}
	return snapshot
}

func statusText(p domain.PaymentAttempt) string {
	switch p.Status {
	case domain.PaymentStatusProcessing:
		return statusTextProcessing
	case domain.PaymentStatusFailed:
		return p.Message
	case domain.PaymentStatusSucceeded:
		return statusTextSucceeded
	default:
		return ""
	}
}
