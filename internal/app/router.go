package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"aurejet/internal/handler"
	"aurejet/internal/middleware"
)

const submitRoute = "/v1/checkout/sessions/:id/submit"

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler     *handler.AuthHandler
	ContentHandler  *handler.ContentHandler
	FlightHandler   *handler.FlightHandler
	CheckoutHandler *handler.CheckoutHandler
	TokenVerifier   middleware.TokenVerifier
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.Metrics())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.GuestAuth(deps.TokenVerifier))
	router.Use(middleware.NewRelicAttributes())
	// Submit carries the session's idempotency key on every retry; the payment
	// state machine rejects overlapping attempts itself.
	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, submitRoute))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Launch and onboarding content.
		v1.GET("/launch", deps.ContentHandler.Launch)
		v1.GET("/onboarding", deps.ContentHandler.Onboarding)
		v1.GET("/navigation", deps.ContentHandler.Navigation)

		// Auth gateway.
		v1.POST("/auth/sessions", deps.AuthHandler.SignIn)

		// Catalog routes.
		flights := v1.Group("/flights")
		{
			flights.GET("", deps.FlightHandler.Feed)
			flights.GET("/search", deps.FlightHandler.Search)
			flights.GET("/search/options", deps.FlightHandler.SearchOptions)
			flights.GET("/:id", deps.FlightHandler.GetFlight)
		}

		// Checkout routes.
		checkout := v1.Group("/checkout")
		{
			checkout.POST("/traveler/validate", deps.CheckoutHandler.ValidateTraveler)
			checkout.POST("/sessions", deps.CheckoutHandler.StartCheckout)
			checkout.GET("/sessions/:id", deps.CheckoutHandler.GetSession)
			checkout.PUT("/sessions/:id/add-on", deps.CheckoutHandler.SetAddOn)
			checkout.PUT("/sessions/:id/payment-method", deps.CheckoutHandler.SetPaymentMethod)
			checkout.POST("/sessions/:id/submit", deps.CheckoutHandler.Submit)
			checkout.GET("/sessions/:id/receipt", deps.CheckoutHandler.GetReceipt)
			checkout.DELETE("/sessions/:id", deps.CheckoutHandler.CloseSession)
		}
	}

	return router
}
