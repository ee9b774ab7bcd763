package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"freight/internal/handler"
	"freight/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	DriverHandler  *handler.DriverHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip routes.
		trips := v1.Group("/trips", middleware.NewRelicAttributes("trip_id"))
		{
			trips.POST("/:id/transitions", deps.TripHandler.RequestTransition)
			trips.GET("/:id/progress", deps.TripHandler.GetProgress)
			trips.GET("/:id/payment", deps.PaymentHandler.GetTripPayment)
		}

		// Driver routes.
		drivers := v1.Group("/drivers", middleware.NewRelicAttributes("driver_id"))
		{
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
		}
	}

	return router
}
