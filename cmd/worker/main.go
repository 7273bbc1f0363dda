// Package main provides the entrypoint for the RoadRisk dataset worker.
// The worker keeps the accident dataset fresh, either on a fixed interval
// or driven by Pub/Sub messages from Cloud Scheduler.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/database"
	"github.com/roadrisk/roadrisk/internal/risk"
	"github.com/roadrisk/roadrisk/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	errDatasetURLRequired   = errors.New("DATASET_URL is required when DATASET_SOURCE=http")
	errUnknownDatasetSource = errors.New("unknown DATASET_SOURCE, expected csv, http, or postgres")
)

func main() {
	const serviceName = "roadrisk-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RoadRisk worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, cleanup, err := buildSource(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure dataset source")
	}
	defer cleanup()

	store := accident.NewStore(accident.StoreConfig{
		Source: source,
		Logger: log,
	})
	engine := risk.NewEngine(risk.Config{
		Store:  store,
		Logger: log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: refreshConfigFromEnv(),
		Logger: log,
		Store:  store,
		Engine: engine,
	})

	// First load happens immediately so the health endpoint reflects a
	// real state instead of "never ran".
	if result := refreshJob.Run(ctx); result.Err != nil {
		log.Error().Err(result.Err).Msg("initial dataset refresh failed")
	}

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"refresh": refreshJob.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub driven when configured, periodic otherwise.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running on a fixed interval")
		go refreshJob.RunPeriodic(ctx)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func refreshConfigFromEnv() worker.RefreshConfig {
	cfg := worker.DefaultRefreshConfig()
	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.Interval = d
		}
	}
	return cfg
}

// buildSource mirrors the API server's dataset source selection.
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
