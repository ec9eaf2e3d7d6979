package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"aurejet/internal/app"
	"aurejet/internal/config"
	"aurejet/internal/handler"
	internalRedis "aurejet/internal/redis"
	"aurejet/internal/repository"
	"aurejet/internal/repository/memory"
	"aurejet/internal/repository/postgres"
	"aurejet/internal/service"
)

// chargeLockTTL bounds how long one idempotency key can hold the gateway.
const chargeLockTTL = 30 * time.Second

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database and Redis clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Error("failed to initialize New Relic", "error", err)
		} else {
			logger.Info("New Relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	var db *sql.DB
	if cfg.Catalog.Backend == config.CatalogBackendPostgres {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to PostgreSQL")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		logger.Info("connected to Redis")
	}

	// Wire dependencies.
	server, checkout, catalog := wireServer(db, redisClient, nrApp, cfg, logger)

	if redisClient != nil {
		if err := catalog.IndexAirports(ctx); err != nil {
			logger.Warn("failed to index airports; nearest airport falls back to in-process distance", "error", err)
		}
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go checkout.Run(sweepCtx, cfg.Checkout.SweepInterval)

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "catalog", cfg.Catalog.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	stopSweep()
	checkout.Shutdown()

	if nrApp != nil {
		nrApp.Shutdown(cfg.Server.ShutdownTimeout)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *slog.Logger,
) (*http.Server, *service.CheckoutService, *service.CatalogService) {
	// Initialize repositories.
	var flightRepo repository.FlightRepository
	var airportRepo repository.AirportRepository
	if db != nil {
		flightRepo = postgres.NewFlightRepository(db)
		airportRepo = postgres.NewAirportRepository(db)
	} else {
		flightRepo = memory.NewFlightRepository(time.Now)
		airportRepo = memory.NewAirportRepository()
	}

	catalogDeps := service.CatalogDeps{
		Flights:  flightRepo,
		Airports: airportRepo,
		Logger:   logger,
	}

	var gateway service.PaymentGateway = service.NewScriptedGateway()
	if redisClient != nil {
		catalogDeps.Cache = internalRedis.NewCacheStore(redisClient, cfg.Catalog.CacheTTL)
		catalogDeps.Locations = internalRedis.NewLocationStore(redisClient)
		gateway = service.NewLockingGateway(gateway, internalRedis.NewLockStore(redisClient), chargeLockTTL, logger)
	}

	var keys service.KeyGenerator = service.NewLegacyKeyGenerator()
	if cfg.Checkout.KeyStrategy == config.KeyStrategyUUID {
		keys = service.NewUUIDKeyGenerator()
	}

	// Initialize services.
	catalogService := service.NewCatalogService(catalogDeps)
	notificationService := service.NewNotificationService(logger)
	receiptService := service.NewReceiptService()
	checkoutService := service.NewCheckoutService(catalogService, receiptService, notificationService, service.CheckoutConfig{
		Gateway:         gateway,
		Keys:            keys,
		ProcessingDelay: cfg.Checkout.ProcessingDelay,
		SessionTTL:      cfg.Checkout.SessionTTL,
		Logger:          logger,
	})
	authService := service.NewAuthService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:     handler.NewAuthHandler(authService),
		ContentHandler:  handler.NewContentHandler(service.NewContentService()),
		FlightHandler:   handler.NewFlightHandler(catalogService),
		CheckoutHandler: handler.NewCheckoutHandler(checkoutService, receiptService),
		TokenVerifier:   authService,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, checkoutService, catalogService
}
