package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurejet/internal/domain"
)

func TestScriptedGateway(t *testing.T) {
	gw := NewScriptedGateway()
	ctx := context.Background()

	first, err := gw.Charge(ctx, ChargeRequest{IdempotencyKey: "k", Attempt: 1})
	require.NoError(t, err)
	assert.False(t, first.Approved)
	assert.Equal(t, ScriptedDeclineMessage, first.DeclineMessage)

	for attempt := 2; attempt <= 4; attempt++ {
		r, err := gw.Charge(ctx, ChargeRequest{IdempotencyKey: "k", Attempt: attempt})
		require.NoError(t, err)
		assert.True(t, r.Approved)
		assert.Equal(t, "ch_k", r.Reference)
	}
}

type fakeLocks struct {
	held       map[string]string
	acquireErr error
	released   []string
}

func (f *fakeLocks) AcquireChargeLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if f.acquireErr != nil {
		return "", false, f.acquireErr
	}
	if _, ok := f.held[key]; ok {
		return "", false, nil
	}
	token := "tok_" + key
	f.held[key] = token
	return token, true, nil
}

func (f *fakeLocks) ReleaseChargeLock(ctx context.Context, key, token string) (bool, error) {
	if f.held[key] != token {
		return false, nil
	}
	delete(f.held, key)
	f.released = append(f.released, key)
	return true, nil
}

type countingGateway struct {
	calls int
}

func (g *countingGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	g.calls++
	return ChargeResult{Approved: true}, nil
}

func TestLockingGateway_ReleasesAfterCharge(t *testing.T) {
	locks := &fakeLocks{held: map[string]string{}}
	gw := NewLockingGateway(NewScriptedGateway(), locks, time.Second, discardLogger())

	r, err := gw.Charge(context.Background(), ChargeRequest{IdempotencyKey: "idem_1", Attempt: 2})
	require.NoError(t, err)
	assert.True(t, r.Approved)
	assert.Equal(t, []string{"idem_1"}, locks.released)
	assert.Empty(t, locks.held)
}

func TestLockingGateway_RejectsConcurrentCharge(t *testing.T) {
	locks := &fakeLocks{held: map[string]string{"idem_1": "tok_other"}}
	gw := NewLockingGateway(NewScriptedGateway(), locks, time.Second, discardLogger())

	_, err := gw.Charge(context.Background(), ChargeRequest{IdempotencyKey: "idem_1", Attempt: 2})
	assert.ErrorIs(t, err, ErrChargeInFlight)
	assert.Empty(t, locks.released)
}

func TestLockingGateway_ProceedsWhenLockStoreDown(t *testing.T) {
	locks := &fakeLocks{held: map[string]string{}, acquireErr: errors.New("connection refused")}
	gw := NewLockingGateway(NewScriptedGateway(), locks, time.Second, discardLogger())

	r, err := gw.Charge(context.Background(), ChargeRequest{IdempotencyKey: "idem_1", Attempt: 1, Method: domain.PaymentMethodCard})
	require.NoError(t, err)
	assert.False(t, r.Approved)
}

func TestLockingGateway_CancelledContextNeverCharges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("cancelled before acquire", func(t *testing.T) {
		inner := &countingGateway{}
		locks := &fakeLocks{held: map[string]string{}}
		gw := NewLockingGateway(inner, locks, time.Second, discardLogger())

		_, err := gw.Charge(ctx, ChargeRequest{IdempotencyKey: "idem_1", Attempt: 2})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, inner.calls)
		assert.Empty(t, locks.held)
	})

	t.Run("acquire fails with the cancellation", func(t *testing.T) {
		inner := &countingGateway{}
		locks := &fakeLocks{held: map[string]string{}, acquireErr: context.Canceled}
		gw := NewLockingGateway(inner, locks, time.Second, discardLogger())

		_, err := gw.Charge(ctx, ChargeRequest{IdempotencyKey: "idem_1", Attempt: 2})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, inner.calls)
	})
}

func TestLockingGateway_DisposedMachineDoesNotCharge(t *testing.T) {
	inner := &countingGateway{}
	locks := &fakeLocks{held: map[string]string{}}
	sched := &manualScheduler{}
	m := NewPaymentMachine(PaymentMachineConfig{
		IdempotencyKey: "idem_1",
		Gateway:        NewLockingGateway(inner, locks, time.Second, discardLogger()),
		Scheduler:      sched,
		Delay:          DefaultProcessingDelay,
		Logger:         discardLogger(),
	})

	require.NoError(t, m.Submit(2047815, domain.PaymentMethodCard))
	m.Dispose()
	sched.FireStopped()

	assert.Zero(t, inner.calls)
	assert.Empty(t, locks.released)
}

func TestLegacyKeyGenerator(t *testing.T) {
	g := &LegacyKeyGenerator{
		now:  func() time.Time { return time.UnixMilli(1760432400123) },
		intN: func(n int) int { return n - 1 },
	}
	assert.Equal(t, "idem_1760432400123_999", g.NewKey())

	live := NewLegacyKeyGenerator().NewKey()
	assert.Regexp(t, regexp.MustCompile(`^idem_\d{13}_\d{1,3}$`), live)
}

func TestUUIDKeyGenerator(t *testing.T) {
	g := NewUUIDKeyGenerator()

	a, b := g.NewKey(), g.NewKey()
	assert.Regexp(t, `^idem_[0-9a-f-]{36}$`, a)
	assert.NotEqual(t, a, b)
}
