package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aurejet/internal/domain"
)

// DefaultProcessingDelay is how long a submitted payment stays in Processing before it resolves.
const DefaultProcessingDelay = 1200 * time.Millisecond

// gatewayErrorMessage is shown when the gateway itself errors rather than declining.
const gatewayErrorMessage = "Payment could not be processed. Retry with the same idempotency key."

// Scheduler runs fn once after d. The returned stop reports whether fn was prevented from running.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// PaymentMachineConfig configures a PaymentMachine.
type PaymentMachineConfig struct {
	IdempotencyKey string
	Gateway        PaymentGateway
	Scheduler      Scheduler
	Delay          time.Duration
	Logger         *slog.Logger

	// OnResolve is called outside the machine lock after an attempt settles.
	// Await callers are released only once it returns.
	OnResolve func(attempt domain.PaymentAttempt)
}

// PaymentMachine drives one checkout's payment through
// Idle -> Processing -> {Failed, Succeeded}, with Failed -> Processing on retry.
// Only one attempt is in flight at a time. The idempotency key is fixed for the
// lifetime of the machine.
type PaymentMachine struct {
	mu sync.Mutex

	key       string
	gateway   PaymentGateway
	scheduler Scheduler
	delay     time.Duration
	logger    *slog.Logger
	onResolve func(domain.PaymentAttempt)

	status   domain.PaymentStatus
	attempts int
	message  string

	ctx      context.Context
	cancel   context.CancelFunc
	stop     func() bool
	settled  chan struct{}
	disposed bool
}

// NewPaymentMachine creates a machine in Idle.
func NewPaymentMachine(cfg PaymentMachineConfig) *PaymentMachine {
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PaymentMachine{
		key:       cfg.IdempotencyKey,
		gateway:   cfg.Gateway,
		scheduler: cfg.Scheduler,
		delay:     cfg.Delay,
		logger:    cfg.Logger,
		onResolve: cfg.OnResolve,
		status:    domain.PaymentStatusIdle,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit starts a new attempt. It is accepted only from Idle or Failed.
func (m *PaymentMachine) Submit(amountCents int64, method domain.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return ErrSessionClosed
	}
	if m.status != domain.PaymentStatusIdle && m.status != domain.PaymentStatusFailed {
		return ErrSubmitNotAllowed
	}

	m.status = domain.PaymentStatusProcessing
	m.attempts++
	m.message = ""

	settled := make(chan struct{})
	m.settled = settled

	req := ChargeRequest{
		IdempotencyKey: m.key,
		Attempt:        m.attempts,
		AmountCents:    amountCents,
		Method:         method,
	}
	m.stop = m.scheduler.AfterFunc(m.delay, func() {
		m.resolve(req, settled)
	})

	return nil
}

func (m *PaymentMachine) resolve(req ChargeRequest, settled chan struct{}) {
	m.mu.Lock()
	if m.disposed || m.attempts != req.Attempt || m.status != domain.PaymentStatusProcessing {
		m.mu.Unlock()
		return
	}
	ctx := m.ctx
	m.mu.Unlock()

	result, err := m.gateway.Charge(ctx, req)

	m.mu.Lock()
	// Dispose may have run while the gateway was charging; it already closed settled.
	if m.disposed || m.attempts != req.Attempt {
		m.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		m.logger.Error("payment gateway error",
			"idempotency_key", req.IdempotencyKey, "attempt", req.Attempt, "error", err)
		m.status = domain.PaymentStatusFailed
		m.message = gatewayErrorMessage
	case result.Approved:
		m.status = domain.PaymentStatusSucceeded
		m.message = ""
	default:
		m.status = domain.PaymentStatusFailed
		m.message = result.DeclineMessage
	}
	m.stop = nil
	snapshot := m.snapshotLocked()
	hook := m.onResolve
	m.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	close(settled)
}

// Await blocks until the latest attempt has settled or ctx is done, then returns the current state.
func (m *PaymentMachine) Await(ctx context.Context) (domain.PaymentAttempt, error) {
	m.mu.Lock()
	settled := m.settled
	m.mu.Unlock()

	if settled == nil {
		return m.Snapshot(), nil
	}

	select {
	case <-settled:
		return m.Snapshot(), nil
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}
}

// Dispose cancels any scheduled resolution. Later callbacks are ignored.
func (m *PaymentMachine) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}
	m.disposed = true

	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.cancel()

	if m.status == domain.PaymentStatusProcessing && m.settled != nil {
		close(m.settled)
	}
}

// Snapshot returns the observable payment state.
func (m *PaymentMachine) Snapshot() domain.PaymentAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Status returns the current state.
func (m *PaymentMachine) Status() domain.PaymentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// IdempotencyKey returns the key every attempt of this machine is charged under.
func (m *PaymentMachine) IdempotencyKey() string {
	return m.key
}

// Disposed reports whether Dispose has been called.
func (m *PaymentMachine) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

func (m *PaymentMachine) snapshotLocked() domain.PaymentAttempt {
	return domain.PaymentAttempt{
		AttemptNumber:  m.attempts,
		IdempotencyKey: m.key,
		Status:         m.status,
		Message:        m.message,
	}
}
