package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/observability"
	"github.com/roadrisk/roadrisk/internal/risk"
)

// Refresh errors.
var (
	// ErrNoSpatialData is returned when a reloaded snapshot has no usable
	// coordinates at all.
	ErrNoSpatialData = errors.New("snapshot has no spatial data")
)

// RefreshJob reloads the accident dataset from its source and verifies the
// resulting snapshot is usable before the API starts answering from it.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger
	clock  clockwork.Clock

	store  *accident.Store
	engine *risk.Engine

	promMetrics *observability.Metrics
	metrics     *RefreshMetrics
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config RefreshConfig
	Logger zerolog.Logger

	// Clock defaults to the real clock.
	Clock clockwork.Clock

	// Store is the dataset store to reload. Required.
	Store *accident.Store

	// Engine is used to warm cluster computations after a reload.
	// Optional; warming is skipped when nil.
	Engine *risk.Engine

	// Metrics receives reload outcome counters. Optional.
	Metrics *observability.Metrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	LastRecords     int
	LastSpatial     int
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RefreshJob{
		config:      cfg.Config.withDefaults(),
		logger:      cfg.Logger,
		clock:       clock,
		store:       cfg.Store,
		engine:      cfg.Engine,
		promMetrics: cfg.Metrics,
		metrics:     &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime     time.Time
	Duration      time.Duration
	TotalRecords  int
	SpatialPoints int
	SpatialRatio  float64
	WarmedRadii   []float64
	Err           error
}

// Run executes one refresh: reload from the source, sanity-check the
// snapshot, then warm the configured cluster radii.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	start := j.clock.Now()
	result := &RefreshResult{StartTime: start}

	runCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	table, err := j.store.Reload(runCtx)
	if err != nil {
		result.Err = fmt.Errorf("reloading dataset: %w", err)
		j.finish(result)
		return result
	}

	result.TotalRecords = table.Len()
	result.SpatialPoints = len(table.Points())
	if result.TotalRecords > 0 {
		result.SpatialRatio = float64(result.SpatialPoints) / float64(result.TotalRecords)
	}

	if result.SpatialPoints == 0 {
		// The snapshot is still installed; scoring degrades to
		// dataset-free results rather than failing outright.
		result.Err = ErrNoSpatialData
		j.finish(result)
		return result
	}

	if result.SpatialRatio < j.config.MinSpatialRatio {
		j.logger.Warn().
			Float64("spatial_ratio", result.SpatialRatio).
			Float64("min_spatial_ratio", j.config.MinSpatialRatio).
			Msg("snapshot has unusually few valid coordinates")
	}

	result.WarmedRadii = j.warmClusters(runCtx)

	j.finish(result)
	return result
}

// warmClusters precomputes high-risk areas for the configured radii.
// Failures are logged and skipped; warming is best effort.
func (j *RefreshJob) warmClusters(ctx context.Context) []float64 {
	if j.engine == nil {
		return nil
	}

	var warmed []float64
	for _, radius := range j.config.WarmClusterRadiiKm {
		areas, err := j.engine.HighRiskAreas(ctx, radius)
		if err != nil {
			j.logger.Warn().Err(err).Float64("radius_km", radius).Msg("cluster warm failed")
			continue
		}
		j.logger.Debug().
			Float64("radius_km", radius).
			Int("areas", len(areas)).
			Msg("warmed cluster radius")
		warmed = append(warmed, radius)
	}
	return warmed
}

func (j *RefreshJob) finish(result *RefreshResult) {
	result.Duration = j.clock.Since(result.StartTime)

	j.metrics.mu.Lock()
	j.metrics.TotalRuns++
	if result.Err != nil {
		j.metrics.FailedRuns++
	} else {
		j.metrics.SuccessfulRuns++
	}
	j.metrics.LastRunAt = j.clock.Now()
	j.metrics.LastRunDuration = result.Duration
	j.metrics.LastRecords = result.TotalRecords
	j.metrics.LastSpatial = result.SpatialPoints
	j.metrics.mu.Unlock()

	if j.promMetrics != nil {
		status := "success"
		if result.Err != nil {
			status = "failure"
		}
		j.promMetrics.DatasetReloads.WithLabelValues(status).Inc()
		if result.Err == nil {
			j.promMetrics.DatasetRecords.Set(float64(result.TotalRecords))
			j.promMetrics.SpatialPoints.Set(float64(result.SpatialPoints))
		}
	}

	event := j.logger.Info()
	if result.Err != nil {
		event = j.logger.Error().Err(result.Err)
	}
	event.
		Dur("duration", result.Duration).
		Int("records", result.TotalRecords).
		Int("spatial_points", result.SpatialPoints).
		Msg("dataset refresh run finished")
}

// RunPeriodic refreshes on the configured interval until the context is
// cancelled. The first run happens after one interval; startup loading is
// the store's job.
func (j *RefreshJob) RunPeriodic(ctx context.Context) {
	ticker := j.clock.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.logger.Info().
		Dur("interval", j.config.Interval).
		Msg("starting periodic dataset refresh")

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("stopping periodic dataset refresh")
			return
		case <-ticker.Chan():
			j.Run(ctx)
		}
	}
}

// HealthCheck verifies the store has a usable snapshot.
func (j *RefreshJob) HealthCheck(_ context.Context) error {
	table, ok := j.store.Snapshot()
	if !ok {
		return accident.ErrNotLoaded
	}
	if len(table.Points()) == 0 {
		return ErrNoSpatialData
	}
	return nil
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		SuccessfulRuns:  j.metrics.SuccessfulRuns,
		FailedRuns:      j.metrics.FailedRuns,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		LastRecords:     j.metrics.LastRecords,
		LastSpatial:     j.metrics.LastSpatial,
	}
}

// MetricsSnapshot returns the current metrics as a map for ops endpoints.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"successful_runs":   m.SuccessfulRuns,
		"failed_runs":       m.FailedRuns,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"last_records":      m.LastRecords,
		"last_spatial":      m.LastSpatial,
	}
}
