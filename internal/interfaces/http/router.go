// Package http assembles the gin route tree and the HTTP server around the
// analysis API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/GraphSentinel/internal/interfaces/http/handlers"
	"github.com/turtacn/GraphSentinel/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.
type RouterConfig struct {
	AnalysisHandler *handlers.AnalysisHandler
	HealthHandler   *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// MetricsHandler serves GET /metrics when non-nil.
	MetricsHandler http.Handler

	EnableCORS  bool
	RateLimiter middleware.RateLimiter

	// Mode is the gin mode: "debug", "release" or "test".
	Mode string
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.EnableCORS {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, middleware.DefaultLoggingConfig()))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.AnalysisHandler != nil {
		api.GET("/companies/:id/analysis", cfg.AnalysisHandler.Analyze)
	}

	return r
}
