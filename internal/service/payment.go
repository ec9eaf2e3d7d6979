package service

import (
	"context"
	"log/slog"
	"time"

	"aurejet/internal/domain"
	"aurejet/internal/redis"
)

// ScriptedDeclineMessage is the banner shown after the scripted first-attempt decline.
const ScriptedDeclineMessage = "Payment failed. Retry with the same idempotency key or switch method."

// ChargeRequest is one payment attempt sent to a gateway.
type ChargeRequest struct {
	IdempotencyKey string
	Attempt        int
	AmountCents    int64
	Method         domain.PaymentMethod
}

// ChargeResult is the gateway's answer. A decline is not an error.
type ChargeResult struct {
	Approved       bool
	Reference      string
	DeclineMessage string
}

// PaymentGateway is the capability the payment state machine charges through.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// ScriptedGateway declines the first attempt of every checkout and approves the rest.
type ScriptedGateway struct{}

// NewScriptedGateway creates a new ScriptedGateway.
func NewScriptedGateway() *ScriptedGateway {
	return &ScriptedGateway{}
}

// Charge resolves purely from the attempt number.
func (g *ScriptedGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if req.Attempt <= 1 {
		return ChargeResult{Approved: false, DeclineMessage: ScriptedDeclineMessage}, nil
	}

	return ChargeResult{Approved: true, Reference: "ch_" + req.IdempotencyKey}, nil
}

// LockingGateway serializes charges per idempotency key across instances.
type LockingGateway struct {
	next    PaymentGateway
	locks   redis.LockStoreInterface
	lockTTL time.Duration
	logger  *slog.Logger
}

// NewLockingGateway wraps next with a distributed per-key charge lock.
func NewLockingGateway(next PaymentGateway, locks redis.LockStoreInterface, lockTTL time.Duration, logger *slog.Logger) *LockingGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockingGateway{next: next, locks: locks, lockTTL: lockTTL, logger: logger}
}

// Charge holds the key's lock for the duration of the inner charge.
// A Redis failure does not block payment; the charge proceeds unlocked.
// A cancelled ctx (session closed) never charges.
func (g *LockingGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}

	token, acquired, err := g.locks.AcquireChargeLock(ctx, req.IdempotencyKey, g.lockTTL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ChargeResult{}, ctxErr
		}
		g.logger.WarnContext(ctx, "charge lock unavailable, proceeding without it",
			"idempotency_key", req.IdempotencyKey, "error", err)
		return g.next.Charge(ctx, req)
	}
	if !acquired {
		return ChargeResult{}, ErrChargeInFlight
	}
	defer func() {
		released, err := g.locks.ReleaseChargeLock(context.WithoutCancel(ctx), req.IdempotencyKey, token)
		switch {
		case err != nil:
			g.logger.WarnContext(ctx, "failed to release charge lock",
				"idempotency_key", req.IdempotencyKey, "error", err)
		case !released:
			g.logger.WarnContext(ctx, "charge lock expired before release",
				"idempotency_key", req.IdempotencyKey, "lock_ttl", g.lockTTL)
		}
	}()

	return g.next.Charge(ctx, req)
}

var (
	_ PaymentGateway = (*ScriptedGateway)(nil)
	_ PaymentGateway = (*LockingGateway)(nil)
)
