package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurejet/internal/handler"
	"aurejet/internal/repository/memory"
	"aurejet/internal/service"
)

// Wednesday morning, before every seeded departure.
var fixedNow = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, redisClient ...*redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := func() time.Time { return fixedNow }
	catalog := service.NewCatalogService(service.CatalogDeps{
		Flights:  memory.NewFlightRepository(now),
		Airports: memory.NewAirportRepository(),
		Logger:   logger,
		Now:      now,
	})
	receipts := service.NewReceiptService()
	checkout := service.NewCheckoutService(catalog, receipts, service.NewNotificationService(logger), service.CheckoutConfig{
		Keys:            service.NewUUIDKeyGenerator(),
		ProcessingDelay: time.Millisecond,
		Logger:          logger,
		Now:             now,
	})
	t.Cleanup(checkout.Shutdown)
	auth := service.NewAuthService("test-secret", time.Hour)

	return NewRouter(RouterDeps{
		AuthHandler:     handler.NewAuthHandler(auth),
		ContentHandler:  handler.NewContentHandler(service.NewContentService()),
		FlightHandler:   handler.NewFlightHandler(catalog),
		CheckoutHandler: handler.NewCheckoutHandler(checkout, receipts),
		TokenVerifier:   auth,
		RedisClient:     firstClient(redisClient),
	})
}

func firstClient(clients []*redis.Client) *redis.Client {
	if len(clients) == 0 {
		return nil
	}
	return clients[0]
}

func send(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/health", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/launch", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/onboarding", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/navigation", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/flights", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/flights/search/options", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/flights/leg-101", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/checkout/sessions/cs_missing", want: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestRouter_MetricsExposesRequestCounter(t *testing.T) {
	router := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouter_RejectsInvalidBearer(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/launch", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SubmitRetryWithSameKeyIsNotReplayed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	router := newTestRouter(t, client)

	w := send(router, http.MethodPost, "/v1/checkout/sessions", `{
		"flight_id": "leg-101",
		"traveler": {"lead_name": "Avery Stone", "passenger_count": 4, "document_type": "passport", "contact_email": "avery@example.com"}
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session handler.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	submit := "/v1/checkout/sessions/" + session.SessionID + "/submit?wait=true"
	key := session.Payment.IdempotencyKey
	require.NotEmpty(t, key)

	w = send(router, http.MethodPost, submit, "", "Idempotency-Key", key)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var failed handler.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	assert.Equal(t, "failed", failed.Payment.Status)

	w = send(router, http.MethodPost, submit, "", "Idempotency-Key", key)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))

	var retried handler.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &retried))
	assert.Equal(t, "succeeded", retried.Payment.Status)
	assert.Equal(t, 2, retried.Payment.AttemptNumber)
	assert.Equal(t, key, retried.Payment.IdempotencyKey)
}

func TestRouter_StartCheckoutIsReplayed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	router := newTestRouter(t, client)

	body := `{"flight_id": "leg-206", "traveler": {"lead_name": "Avery Stone", "passenger_count": 2, "document_type": "passport", "contact_email": "avery@example.com"}}`
	first := send(router, http.MethodPost, "/v1/checkout/sessions", body, "Idempotency-Key", "start-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	again := send(router, http.MethodPost, "/v1/checkout/sessions", body, "Idempotency-Key", "start-1")
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), again.Body.String())
}
