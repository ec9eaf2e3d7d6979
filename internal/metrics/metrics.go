package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurejet_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aurejet_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})

	PaymentAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurejet_payment_attempts_total",
		Help: "Resolved payment attempts, labeled by outcome and method",
	}, []string{"outcome", "method"})

	CheckoutSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aurejet_checkout_sessions_active",
		Help: "Checkout sessions currently held in memory",
	})

	CheckoutSessionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurejet_checkout_sessions_closed_total",
		Help: "Checkout sessions disposed, labeled by reason",
	}, []string{"reason"})

	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aurejet_idempotent_replays_total",
		Help: "Responses served from the idempotency cache",
	})
)

const (
	OutcomeApproved = "approved"
	OutcomeDeclined = "declined"

	CloseReasonClient   = "client"
	CloseReasonExpired  = "expired"
	CloseReasonShutdown = "shutdown"
)
