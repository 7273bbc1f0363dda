// Package api provides the HTTP API for RoadRisk.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/api/handler"
	"github.com/roadrisk/roadrisk/internal/api/middleware"
	"github.com/roadrisk/roadrisk/internal/auth"
	"github.com/roadrisk/roadrisk/internal/risk"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	JWTService  *auth.JWTService
	Engine      *risk.Engine
	Store       *accident.Store

	// PrometheusRegistry backs GET /metrics. Optional.
	PrometheusRegistry *prometheus.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadrisk-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Store)
	riskHandler := handler.NewRiskHandler(cfg.Engine)
	datasetHandler := handler.NewDatasetHandler(cfg.Engine, cfg.Store, cfg.Logger)
	metadataHandler := handler.NewMetadataHandler(cfg.Engine)

	authMiddleware := middleware.Auth(cfg.JWTService)

	// Rate limit middleware for different endpoint categories
	adminRateLimit := middleware.RateLimitByOperator(middleware.AdminRateLimit) // 10 req/min
	scoringRateLimit := middleware.RateLimitByIP(middleware.ScoringRateLimit)   // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// Prometheus scrape endpoint (outside the versioned API)
	if cfg.PrometheusRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.PrometheusRegistry, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Scoring endpoint - recomputes clusters per request, strict rate limiting
		r.With(scoringRateLimit).Post("/routes:score", riskHandler.ScoreRoute)

		// Risk areas and dataset inspection - standard rate limiting
		r.With(standardRateLimit).Get("/risk-areas", riskHandler.ListRiskAreas)
		r.With(standardRateLimit).Get("/dataset", datasetHandler.GetDatasetInfo)

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/bounds", metadataHandler.GetCityBounds)
			r.Get("/sample-request", metadataHandler.GetSampleRequest)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminRateLimit)
			r.Post("/dataset:reload", datasetHandler.ReloadDataset)
		})
	})

	return r
}
