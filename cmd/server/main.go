package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"freight/internal/advisory"
	"freight/internal/app"
	"freight/internal/config"
	"freight/internal/handler"
	"freight/internal/maps"
	"freight/internal/notify"
	internalRedis "freight/internal/redis"
	"freight/internal/repository/postgres"
	"freight/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Connect to the notification broker; without one, notifications are logged.
	amqpConn, err := app.NewRabbitMQConnection(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	if amqpConn != nil {
		defer amqpConn.Close()
		log.Println("Connected to RabbitMQ")
	}

	// Wire dependencies.
	server, coordinator := wireServer(db, redisClient, amqpConn, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	// Let queued notifications and advisory lookups drain.
	coordinator.Wait()

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// coordinator, whose background work must be drained on shutdown.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	amqpConn *amqp.Connection,
	nrApp *newrelic.Application,
	cfg *config.Config,
) (*http.Server, *service.TripCoordinator) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Settlement.RateCacheTTL)

	// Initialize repositories.
	tripStore := postgres.NewTripStore(db)
	actorRepo := postgres.NewActorRepository(db)
	settingRepo := postgres.NewSettingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Initialize external collaborators.
	var dispatcher service.Dispatcher = notify.NewLogDispatcher()
	if amqpConn != nil {
		amqpDispatcher, err := notify.NewAMQPDispatcher(amqpConn, cfg.RabbitMQ.Queue)
		if err != nil {
			log.Fatalf("failed to set up notification queue: %v", err)
		}
		dispatcher = amqpDispatcher
	}

	var advisor service.Advisor
	if cfg.Advisory.BaseURL != "" {
		httpAdvisor, err := advisory.NewHTTPAdvisor(advisory.Config{
			BaseURL: cfg.Advisory.BaseURL,
			APIKey:  cfg.Advisory.APIKey,
			Timeout: cfg.Advisory.Timeout,
		})
		if err != nil {
			log.Fatalf("failed to create advisory client: %v", err)
		}
		advisor = httpAdvisor
	} else {
		log.Println("Advisory service not configured; pickups proceed without advisories")
	}

	var routes service.RouteEstimator
	if cfg.Maps.APIKey != "" {
		routeService, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("failed to create route service: %v", err)
		}
		routes = routeService
	} else {
		log.Println("Maps API key not set; ETA will be reported unavailable")
	}

	// Initialize services.
	notificationService := service.NewNotificationService(dispatcher, cfg.Notification.MaxRetries, cfg.Notification.Backoff)
	commissionService := service.NewCommissionService(cacheStore, settingRepo, decimal.NewFromFloat(cfg.Settlement.DefaultCommissionRate))
	locationService := service.NewLocationService(locationStore)
	paymentService := service.NewPaymentService(paymentRepo)
	coordinator := service.NewTripCoordinator(
		tripStore,
		actorRepo,
		locationStore,
		commissionService,
		notificationService,
		advisor,
		routes,
		service.CoordinatorConfig{
			CommissionKey:   cfg.Settlement.CommissionKey,
			AdvisoryTimeout: cfg.Advisory.Timeout,
			RouteTimeout:    cfg.Maps.Timeout,
		},
	)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(coordinator)
	driverHandler := handler.NewDriverHandler(locationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:    tripHandler,
		DriverHandler:  driverHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, coordinator
}
