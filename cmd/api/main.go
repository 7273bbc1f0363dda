// Package main provides the entrypoint for the RoadRisk API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/api"
	"github.com/roadrisk/roadrisk/internal/api/middleware"
	"github.com/roadrisk/roadrisk/internal/auth"
	"github.com/roadrisk/roadrisk/internal/database"
	"github.com/roadrisk/roadrisk/internal/observability"
	"github.com/roadrisk/roadrisk/internal/risk"
	"github.com/roadrisk/roadrisk/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	errDatasetURLRequired   = errors.New("DATASET_URL is required when DATASET_SOURCE=http")
	errUnknownDatasetSource = errors.New("unknown DATASET_SOURCE, expected csv, http, or postgres")
)

func main() {
	const serviceName = "roadrisk-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RoadRisk API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize HTTP metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Prometheus registry backing the scrape endpoint
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := observability.NewMetrics(registry)

	// Pick the dataset source
	source, cleanup, err := buildSource(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure dataset source")
	}
	defer cleanup()

	store := accident.NewStore(accident.StoreConfig{
		Source: source,
		Logger: log,
	})

	// Load the dataset. A failure is not fatal: the API answers in
	// degraded mode and an operator reload can recover later.
	if err := store.Load(ctx); err != nil {
		log.Error().Err(err).Msg("initial dataset load failed, starting degraded")
	}

	engine := risk.NewEngine(risk.Config{
		Store:   store,
		Logger:  log,
		Metrics: engineMetrics,
	})

	// Initialize JWT service for admin endpoints
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            httpMetrics,
		JWTService:         jwtService,
		Engine:             engine,
		Store:              store,
		PrometheusRegistry: registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// buildSource picks the dataset source from DATASET_SOURCE: "csv" (default),
// "http", or "postgres". The returned cleanup releases any held resources.
func buildSource(ctx context.Context, log zerolog.Logger) (accident.Source, func(), error) {
	noop := func() {}

	switch os.Getenv("DATASET_SOURCE") {
	case "", "csv":
		path := os.Getenv("DATASET_PATH")
		if path == "" {
			path = "data/accidents.csv"
		}
		log.Info().Str("path", path).Msg("using CSV dataset source")
		return accident.NewFileSource(path), noop, nil

	case "http":
		url := os.Getenv("DATASET_URL")
		if url == "" {
			return nil, noop, errDatasetURLRequired
		}
		log.Info().Str("url", url).Msg("using HTTP dataset source")
		return accident.NewHTTPSource(url), noop, nil

	case "postgres":
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			return nil, noop, err
		}
		tableName := os.Getenv("DATASET_TABLE")
		if tableName == "" {
			tableName = "accidents"
		}
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Str("table", tableName).
			Msg("using PostgreSQL dataset source")
		return accident.NewPostgresSource(pool, tableName), pool.Close, nil

	default:
		return nil, noop, errUnknownDatasetSource
	}
}
