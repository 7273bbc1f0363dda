package risk

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/observability"
)

// fixedRand pins the perturbation draw. Float64 returning 0 yields the
// minimum perturbation of 0.1.
type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }

func newTestEngine(t *testing.T, table *accident.Table) (*Engine, *accident.Store) {
	t.Helper()
	store := accident.NewStore(accident.StoreConfig{
		Source: &accident.StaticSource{Table: table},
		Logger: zerolog.Nop(),
	})
	if table != nil {
		require.NoError(t, store.Load(context.Background()))
	}
	engine := NewEngine(Config{
		Store:   store,
		Logger:  zerolog.Nop(),
		Rand:    fixedRand{},
		Metrics: observability.NewMetricsForTesting(),
	})
	return engine, store
}

func TestEngine_HighRiskAreas(t *testing.T) {
	coords := [][2]float64{
		{26.9100, 75.7900},
		{26.9110, 75.7910},
		{26.9090, 75.7890},
		{27.9000, 76.9000},
	}
	engine, _ := newTestEngine(t, tableFromCoords(coords))

	areas, err := engine.HighRiskAreas(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, 3, areas[0].AccidentCount)
}

func TestEngine_HighRiskAreas_NotLoaded(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	_, err := engine.HighRiskAreas(context.Background(), 5.0)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestEngine_ScoreRoute_Validation(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	tests := []struct {
		name  string
		route Route
		field string
	}{
		{"latitude above range", Route{StartLat: 95, EndLat: 26.9, EndLng: 75.8}, "startLat"},
		{"latitude below range", Route{StartLat: -95, EndLat: 26.9, EndLng: 75.8}, "startLat"},
		{"longitude above range", Route{StartLat: 26.9, StartLng: 181, EndLat: 26.9, EndLng: 75.8}, "startLng"},
		{"end latitude invalid", Route{StartLat: 26.9, StartLng: 75.8, EndLat: -90.5, EndLng: 75.8}, "endLat"},
		{"not a number", Route{StartLat: math.NaN(), EndLat: 26.9, EndLng: 75.8}, "startLat"},
		{"infinite", Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.9, EndLng: math.Inf(1)}, "endLng"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ScoreRoute(context.Background(), tt.route)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEngine_ScoreRoute_BoundaryCoordinatesAccepted(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	_, err := engine.ScoreRoute(context.Background(), Route{
		StartLat: 90, StartLng: -180, EndLat: -90, EndLng: 180,
	})
	assert.NoError(t, err)
}

func TestEngine_ScoreRoute_DegradedWithoutDataset(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	result, err := engine.ScoreRoute(context.Background(), Route{
		StartLat: 26.9, StartLng: 75.8, EndLat: 26.85, EndLng: 75.82,
	})

	require.NoError(t, err)
	assert.Nil(t, result.Proximity)
	assert.Equal(t, "unavailable", result.RouteSummary.DataSource)
	assert.Empty(t, result.Factors.AreaFactors)
	assert.GreaterOrEqual(t, result.Score, 0.6)
}

func TestEngine_ScoreRoute_WithDataset(t *testing.T) {
	coords := [][2]float64{
		{26.9010, 75.8000},
		{26.9020, 75.8010},
		{26.8990, 75.7990},
	}
	engine, _ := newTestEngine(t, tableFromCoords(coords))

	result, err := engine.ScoreRoute(context.Background(), Route{
		StartLat: 26.9, StartLng: 75.8, EndLat: 26.85, EndLng: 75.82,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Proximity)
	assert.True(t, result.Proximity.Available)
	assert.Equal(t, "test", result.RouteSummary.DataSource)
	assert.Equal(t, 0.9, result.Factors.ProximityFactor)
	assert.True(t, result.RouteSummary.CrossesHighRiskAreas)
}

func TestEngine_ScoreRoute_PinnedScoreIsReproducible(t *testing.T) {
	coords := [][2]float64{
		{26.9010, 75.8000},
		{26.9020, 75.8010},
		{26.8990, 75.7990},
	}
	engine, _ := newTestEngine(t, tableFromCoords(coords))
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.85, EndLng: 75.82}

	first, err := engine.ScoreRoute(context.Background(), route)
	require.NoError(t, err)
	second, err := engine.ScoreRoute(context.Background(), route)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Factors, second.Factors)
}

func TestEngine_ReloadReflectedInQueries(t *testing.T) {
	engine, store := newTestEngine(t, tableFromCoords([][2]float64{
		{26.9100, 75.7900},
		{26.9110, 75.7910},
		{26.9090, 75.7890},
	}))

	areas, err := engine.HighRiskAreas(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, areas, 1)

	store.Clear()
	_, err = engine.HighRiskAreas(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestEngine_DatasetInfo(t *testing.T) {
	rows := []accident.Row{
		{"latitude": "26.91", "longitude": "75.79", "Severity": "Fatal", "Accident Date": "2023-01-15"},
		{"latitude": "bad", "longitude": "75.80", "Severity": "Minor", "Accident Date": "2023-02-20"},
	}
	table := accident.NewTable(
		[]string{"latitude", "longitude", "Severity", "Accident Date"},
		rows, "csv:accidents.csv", time.Unix(1700000000, 0))
	engine, _ := newTestEngine(t, table)

	info, err := engine.DatasetInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "csv:accidents.csv", info.Source)
	assert.Equal(t, 2, info.TotalRecords)
	assert.Equal(t, 1, info.SpatialPoints)
	assert.Equal(t, "latitude", info.LatColumn)
	assert.Equal(t, "longitude", info.LngColumn)
	assert.True(t, info.CoordinatesAvailable)
	assert.Len(t, info.SampleRows, 2)
	assert.Equal(t, map[string]int{"Fatal": 1, "Minor": 1}, info.SeverityDistribution)
	assert.Equal(t, []string{"Accident Date"}, info.TimeColumns)
}

func TestEngine_DatasetInfo_NotLoaded(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	_, err := engine.DatasetInfo(context.Background())
	assert.True(t, errors.Is(err, ErrDatasetUnavailable))
}
