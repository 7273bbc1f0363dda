package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/observability"
)

// ErrDatasetUnavailable is returned by queries that require a dataset
// snapshot when none has been loaded.
var ErrDatasetUnavailable = errors.New("accident dataset unavailable")

// unavailableDataSource marks results computed without a dataset snapshot.
const unavailableDataSource = "unavailable"

// ValidationError reports a rejected route coordinate.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RandSource supplies the uniform draw for the unmodeled-conditions factor.
// Injectable so tests can pin scoring output.
type RandSource interface {
	Float64() float64
}

// Config holds the engine's dependencies.
type Config struct {
	Store  *accident.Store
	Logger zerolog.Logger

	// Rand defaults to a time-seeded source.
	Rand RandSource

	// Metrics defaults to a throwaway registry.
	Metrics *observability.Metrics

	// ClusterRadiusKm defaults to DefaultClusterRadiusKm.
	ClusterRadiusKm float64
}

// Engine answers risk queries against the current dataset snapshot. All
// spatial results are recomputed per query from the snapshot, so a reload
// between two queries is fully reflected in the second.
type Engine struct {
	store   *accident.Store
	logger  zerolog.Logger
	rand    RandSource
	metrics *observability.Metrics
	radius  float64
}

// NewEngine creates a risk engine.
func NewEngine(cfg Config) *Engine {
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	radius := cfg.ClusterRadiusKm
	if radius <= 0 {
		radius = DefaultClusterRadiusKm
	}
	return &Engine{
		store:   cfg.Store,
		logger:  cfg.Logger,
		rand:    rnd,
		metrics: metrics,
		radius:  radius,
	}
}

// HighRiskAreas recomputes accident clusters from the current snapshot.
// radiusKm <= 0 selects the default grouping radius. Returns
// ErrDatasetUnavailable when no snapshot is loaded.
func (e *Engine) HighRiskAreas(ctx context.Context, radiusKm float64) ([]RiskArea, error) {
	table, ok := e.store.Snapshot()
	if !ok {
		e.metrics.DegradedQueries.Inc()
		return nil, ErrDatasetUnavailable
	}
	if radiusKm <= 0 {
		radiusKm = e.radius
	}

	areas := DetectHighRiskAreas(table, radiusKm)

	e.metrics.RiskAreaQueries.Inc()
	e.metrics.RiskAreasFound.Observe(float64(len(areas)))
	e.logger.Debug().
		Float64("radius_km", radiusKm).
		Int("areas", len(areas)).
		Int("records", table.Len()).
		Msg("high-risk areas computed")

	return areas, nil
}

// ScoreRoute validates the route and aggregates its severity against the
// current snapshot. Scoring succeeds even without a snapshot; the result
// then carries an unavailable data source marker and no proximity analysis.
func (e *Engine) ScoreRoute(ctx context.Context, route Route) (*SeverityResult, error) {
	if err := validateRoute(route); err != nil {
		return nil, err
	}

	start := time.Now()

	var (
		proximity  *ProximityAnalysis
		areas      []RiskArea
		dataSource = unavailableDataSource
	)
	if table, ok := e.store.Snapshot(); ok {
		p := AnalyzeRouteProximity(table, route)
		proximity = &p
		areas = DetectHighRiskAreas(table, e.radius)
		dataSource = table.Source
	} else {
		e.metrics.DegradedQueries.Inc()
	}

	perturbation := minPerturbation + e.rand.Float64()*(maxPerturbation-minPerturbation)
	result := AggregateSeverity(route, proximity, areas, perturbation, dataSource)

	e.metrics.RoutesScored.WithLabelValues(string(result.Level)).Inc()
	e.metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug().
		Float64("score", result.Score).
		Str("level", string(result.Level)).
		Float64("route_km", result.Factors.RouteDistanceKm).
		Bool("dataset_available", proximity != nil).
		Msg("route scored")

	return result, nil
}

// DatasetInfo describes the current snapshot for inspection endpoints.
type DatasetInfo struct {
	Source               string
	LoadedAt             time.Time
	TotalRecords         int
	Columns              []string
	LatColumn            string
	LngColumn            string
	CoordinatesAvailable bool
	SpatialPoints        int
	SampleRows           []accident.Row
	ColumnSummary        accident.ColumnSummary
	SeverityDistribution map[string]int
	TimeColumns          []string
}

// DatasetInfo reports snapshot metadata. Returns ErrDatasetUnavailable when
// no snapshot is loaded.
func (e *Engine) DatasetInfo(ctx context.Context) (*DatasetInfo, error) {
	table, ok := e.store.Snapshot()
	if !ok {
		e.metrics.DegradedQueries.Inc()
		return nil, ErrDatasetUnavailable
	}

	latCol, lngCol, hasCoords := table.CoordinateColumns()
	return &DatasetInfo{
		Source:               table.Source,
		LoadedAt:             table.LoadedAt,
		TotalRecords:         table.Len(),
		Columns:              table.Columns,
		LatColumn:            latCol,
		LngColumn:            lngCol,
		CoordinatesAvailable: hasCoords,
		SpatialPoints:        len(table.Points()),
		SampleRows:           table.SampleRows(5),
		ColumnSummary:        table.Summarize(),
		SeverityDistribution: table.SeverityDistribution(),
		TimeColumns:          table.TimeColumns(),
	}, nil
}

func validateRoute(route Route) error {
	checks := []struct {
		field string
		value float64
		min   float64
		max   float64
	}{
		{"startLat", route.StartLat, -90, 90},
		{"startLng", route.StartLng, -180, 180},
		{"endLat", route.EndLat, -90, 90},
		{"endLng", route.EndLng, -180, 180},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ValidationError{Field: c.field, Message: "must be a finite number"}
		}
		if c.value < c.min || c.value > c.max {
			return &ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("must be between %g and %g", c.min, c.max),
			}
		}
	}
	return nil
}
