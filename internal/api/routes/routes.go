// Package routes defines the HTTP routes for the products service.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantryshelf/products-service/internal/api/handlers"
	"github.com/pantryshelf/products-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler      *handlers.HealthHandler
	CollectionsHandler *handlers.CollectionsHandler
	// Collections lists the collection names exposed under /api.
	Collections []string
	CORS        middleware.CORSConfig
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	r.GET("/health", cfg.HealthHandler.Health)
	r.GET("/ready", cfg.HealthHandler.Ready)
	r.GET("/live", cfg.HealthHandler.Live)

	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api")
	{
		for _, name := range cfg.Collections {
			api.GET("/"+name, cfg.CollectionsHandler.List(name))
		}
	}

	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(middleware.NewCORSMiddleware(cfg.CORS))

	Setup(r, cfg)
}
