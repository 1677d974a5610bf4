// Package api provides the HTTP API for the flow catalog server.
package api

import (
	"context"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/api/handlers"
	"github.com/MacJediWizard/flowcatalog/internal/api/middleware"
	"github.com/MacJediWizard/flowcatalog/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API router.
type Config struct {
	Environment config.Environment
	// AllowedOrigins for CORS. Empty means all origins allowed in dev mode.
	AllowedOrigins []string
	// RateLimitRequests is the number of requests allowed per period, 0 disables limiting.
	RateLimitRequests int64
	RateLimitPeriod   time.Duration
	// RateLimitRedisURL selects a shared redis limiter store when set.
	RateLimitRedisURL string
	// SchemaVersion is the migration version the health check expects.
	SchemaVersion int
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Environment:       config.EnvDevelopment,
		AllowedOrigins:    []string{},
		RateLimitRequests: config.DefaultRateLimit,
		RateLimitPeriod:   config.DefaultRateLimitPeriod,
	}
}

// ConfigFromServer maps the server environment configuration onto the router's.
func ConfigFromServer(cfg config.ServerConfig, schemaVersion int) Config {
	return Config{
		Environment:       cfg.Environment,
		AllowedOrigins:    cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimit,
		RateLimitPeriod:   cfg.RateLimitPeriod,
		RateLimitRedisURL: cfg.RateLimitRedis,
		SchemaVersion:     schemaVersion,
	}
}

// Database is what the router needs from the store for health reporting.
type Database interface {
	handlers.DatabaseHealthChecker
	handlers.SchemaVersionChecker
}

// Metrics records HTTP traffic.
type Metrics interface {
	middleware.HTTPRecorder
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine  *gin.Engine
	logger  zerolog.Logger
	limiter *redis.Client
}

// NewRouter creates a new Router with the given dependencies. metrics may be
// nil, in which case HTTP traffic is not counted.
func NewRouter(
	ctx context.Context,
	cfg Config,
	database Database,
	reader handlers.CatalogReader,
	metrics Metrics,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) (*Router, error) {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestID())
	r.Engine.Use(middleware.SecurityHeaders())
	r.Engine.Use(middleware.RequestLogger(logger))
	if metrics != nil {
		r.Engine.Use(middleware.HTTPMetrics(metrics))
	}
	r.Engine.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Environment, logger))

	if err := r.useRateLimiter(ctx, cfg); err != nil {
		return nil, err
	}

	healthHandler := handlers.NewHealthHandler(database, database, cfg.SchemaVersion, logger)
	healthHandler.RegisterPublicRoutes(r.Engine)

	if gatherer != nil {
		metricsHandler := handlers.NewMetricsHandler(gatherer, logger)
		metricsHandler.RegisterPublicRoutes(r.Engine)
	}

	apiV1 := r.Engine.Group("/api/v1")

	catalogHandler := handlers.NewCatalogHandler(reader, logger)
	catalogHandler.RegisterRoutes(apiV1)

	r.logger.Info().Msg("API router initialized")
	return r, nil
}

func (r *Router) useRateLimiter(ctx context.Context, cfg Config) error {
	if cfg.RateLimitRequests <= 0 {
		r.logger.Warn().Msg("rate limiting disabled")
		return nil
	}

	if cfg.RateLimitRedisURL != "" {
		mw, client, err := middleware.NewRedisRateLimiter(ctx, cfg.RateLimitRedisURL, cfg.RateLimitRequests, cfg.RateLimitPeriod)
		if err != nil {
			return err
		}
		r.limiter = client
		r.Engine.Use(mw)
		r.logger.Info().Int64("requests", cfg.RateLimitRequests).Dur("period", cfg.RateLimitPeriod).Msg("rate limiting with redis store")
		return nil
	}

	mw, err := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod)
	if err != nil {
		return err
	}
	r.Engine.Use(mw)
	return nil
}

// Close releases resources held by the router.
func (r *Router) Close() error {
	if r.limiter != nil {
		return r.limiter.Close()
	}
	return nil
}
