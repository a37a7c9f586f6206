// Package main is the entry point for the Products Service.
// @title Products Service API
// @version 1.0
// @description Read-only gateway serving product collections from a document database

// @host localhost:8080
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pantryshelf/products-service/docs"
	"github.com/pantryshelf/products-service/internal/api/handlers"
	"github.com/pantryshelf/products-service/internal/api/middleware"
	"github.com/pantryshelf/products-service/internal/api/routes"
	"github.com/pantryshelf/products-service/internal/config"
	"github.com/pantryshelf/products-service/internal/core/docdb"
	"github.com/pantryshelf/products-service/internal/core/vault"
	"github.com/pantryshelf/products-service/internal/infrastructure/docdb/mongodb"
	dotenvvault "github.com/pantryshelf/products-service/internal/infrastructure/vault/dotenv"
	"github.com/pantryshelf/products-service/internal/metrics"
	"github.com/pantryshelf/products-service/internal/pkg/logger"
	"github.com/pantryshelf/products-service/internal/pkg/retry"
	"github.com/pantryshelf/products-service/internal/services/collections"
	"github.com/pantryshelf/products-service/internal/services/connection"
	"github.com/pantryshelf/products-service/internal/services/products"
)

const appName = "products-service"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx := context.Background()

	// Initialize vault client using factory pattern
	vaultClient, err := createVault(cfg.Vault)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vault")
	}
	defer vaultClient.Close()

	uri, err := vault.Resolve(ctx, vaultClient, cfg.DocDB.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve document database URI")
	}

	dialer, err := createDocDBDialer(cfg.DocDB, uri)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document database dialer")
	}

	var (
		recorder       metrics.Recorder = metrics.Noop{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		m := metrics.NewMetrics()
		recorder = m
		metricsHandler = m.Handler()
	}

	// The connection is opened lazily by the first request.
	manager, err := connection.NewManager(&connection.Config{
		Dialer:  dialer,
		Policy:  retry.Policy{MaxRetries: cfg.Retry.ConnectMaxRetries, Delay: cfg.Retry.ConnectDelay},
		Logger:  &appLogger,
		Metrics: recorder,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize connection manager")
	}

	reader, err := collections.NewReader(&collections.Config{
		Provider: manager,
		Policy:   retry.Policy{MaxRetries: cfg.Retry.FetchMaxRetries, Delay: cfg.Retry.FetchDelay},
		Logger:   &appLogger,
		Metrics:  recorder,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize collection reader")
	}

	productsService, err := products.NewService(&products.Config{
		Connector: manager,
		Fetcher:   reader,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize products service")
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	router := setupRouter(cfg, manager, productsService, metricsHandler)

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		log.Info().
			Str("address", cfg.Server.Address()).
			Strs("collections", cfg.Collections).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := manager.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close document database connection")
	}

	log.Info().Msg("server exited")
}

// createVault creates a vault based on the configuration.
func createVault(cfg config.VaultConfig) (vault.Vault, error) {
	vaultType, err := vault.ParseType(cfg.Type)
	if err != nil {
		return nil, err
	}

	switch vaultType {
	case vault.TypeDotEnv:
		return dotenvvault.NewVault(cfg.Files...)
	default:
		return nil, fmt.Errorf("unsupported vault type: %s", cfg.Type)
	}
}

// createDocDBDialer creates a document database dialer based on the configuration.
func createDocDBDialer(cfg config.DocDBConfig, uri string) (docdb.Dialer, error) {
	docDBType, err := docdb.ParseType(cfg.Type)
	if err != nil {
		return nil, err
	}

	switch docDBType {
	case docdb.TypeMongoDB, docdb.TypeCosmosDB:
		// CosmosDB speaks the MongoDB wire protocol.
		return mongodb.NewDialer(&mongodb.ClientConfig{
			URI:            uri,
			DatabaseName:   cfg.Database,
			AppName:        appName,
			ConnectTimeout: cfg.ConnectTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported docdb type: %s", cfg.Type)
	}
}

// setupRouter creates and configures the Gin router.
func setupRouter(cfg *config.Config, manager *connection.Manager, service products.Service, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()

	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()

	routesCfg := &routes.Config{
		HealthHandler:      handlers.NewHealthHandler(manager),
		CollectionsHandler: handlers.NewCollectionsHandler(service, cfg.Server.RequestTimeout),
		Collections:        cfg.Collections,
		CORS:               middleware.NewCORSConfig(cfg.CORS.AllowedOrigins, cfg.CORS.AllowCredentials),
		MetricsHandler:     metricsHandler,
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw)

	// Swagger documentation endpoint
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
