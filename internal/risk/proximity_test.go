package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrisk/roadrisk/internal/accident"
)

var testRoute = Route{
	StartLat: 26.9000,
	StartLng: 75.8000,
	EndLat:   26.8500,
	EndLng:   75.8200,
}

func TestAnalyzeRouteProximity_VeryClosePoints(t *testing.T) {
	// Three points roughly 100-300 m from the start endpoint. Each scores
	// the very-close weight; 3 * 3.0 * 0.1 = 0.9.
	coords := [][2]float64{
		{26.9010, 75.8000},
		{26.9020, 75.8000},
		{26.8990, 75.8010},
	}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)

	require.True(t, analysis.Available)
	assert.InDelta(t, 0.9, analysis.RouteRiskScore, 1e-9)
	assert.Equal(t, 3, analysis.NearbyWithin2Km)
	assert.Len(t, analysis.NearbyAccidents, 3)
}

func TestAnalyzeRouteProximity_TieredWeights(t *testing.T) {
	// One point per tier plus one inside the inclusion radius but outside
	// all weighted tiers, and one far outside everything.
	coords := [][2]float64{
		{26.9030, 75.8000}, // ~0.33 km: very close
		{26.9070, 75.8000}, // ~0.78 km: close
		{26.9130, 75.8000}, // ~1.45 km: nearby
		{26.9220, 75.8000}, // ~2.45 km: listed, no weight
		{26.9900, 75.8000}, // ~10 km: excluded
	}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)

	require.True(t, analysis.Available)
	assert.InDelta(t, 0.6, analysis.RouteRiskScore, 1e-9)
	assert.Len(t, analysis.NearbyAccidents, 4)
	assert.Equal(t, 3, analysis.NearbyWithin2Km)
	assert.Equal(t, 5, analysis.TotalAccidents)
}

func TestAnalyzeRouteProximity_SortedByDistance(t *testing.T) {
	coords := [][2]float64{
		{26.9130, 75.8000},
		{26.9010, 75.8000},
		{26.9070, 75.8000},
	}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)

	require.Len(t, analysis.NearbyAccidents, 3)
	for i := 1; i < len(analysis.NearbyAccidents); i++ {
		assert.LessOrEqual(t,
			analysis.NearbyAccidents[i-1].DistanceKm,
			analysis.NearbyAccidents[i].DistanceKm)
	}
}

func TestAnalyzeRouteProximity_ListTruncation(t *testing.T) {
	// Twenty points inside 2 km: the reported list is capped but the
	// within-2km count is not.
	var coords [][2]float64
	for i := 0; i < 20; i++ {
		coords = append(coords, [2]float64{26.9000 + float64(i)*0.0005, 75.8000})
	}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)

	assert.Len(t, analysis.NearbyAccidents, 15)
	assert.Equal(t, 20, analysis.NearbyWithin2Km)
}

func TestAnalyzeRouteProximity_ScoreCap(t *testing.T) {
	// Fifty very close points would accumulate 15.0 before scaling; after
	// scaling the score is capped.
	var coords [][2]float64
	for i := 0; i < 50; i++ {
		coords = append(coords, [2]float64{26.9001, 75.8001})
	}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)
	assert.Equal(t, 4.0, analysis.RouteRiskScore)
}

func TestAnalyzeRouteProximity_NearerEndpointWins(t *testing.T) {
	// A point just off the end coordinate must count even though it is far
	// from the start.
	coords := [][2]float64{
		{26.8510, 75.8200},
	}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)

	assert.InDelta(t, 0.3, analysis.RouteRiskScore, 1e-9)
	require.Len(t, analysis.NearbyAccidents, 1)
}

func TestAnalyzeRouteProximity_AttributesCarried(t *testing.T) {
	rows := []accident.Row{
		{
			"latitude":      "26.9010",
			"longitude":     "75.8000",
			"Severity":      "Fatal",
			"Accident Date": "2023-01-15",
		},
	}
	table := accident.NewTable(
		[]string{"latitude", "longitude", "Severity", "Accident Date"},
		rows, "test", time.Unix(0, 0))

	analysis := AnalyzeRouteProximity(table, testRoute)

	require.Len(t, analysis.NearbyAccidents, 1)
	attrs := analysis.NearbyAccidents[0].Attributes
	assert.Equal(t, "Fatal", attrs["severity"])
	assert.Equal(t, "2023-01-15", attrs["accident_date"])
	assert.NotContains(t, attrs, "latitude")
	assert.NotContains(t, attrs, "longitude")
}

func TestAnalyzeRouteProximity_NoCoordinateColumns(t *testing.T) {
	rows := []accident.Row{
		{"Severity": "Minor", "Road": "MI Road"},
		{"Severity": "Serious", "Road": "Tonk Road"},
	}
	table := accident.NewTable([]string{"Severity", "Road"}, rows, "test", time.Unix(0, 0))

	analysis := AnalyzeRouteProximity(table, testRoute)

	assert.False(t, analysis.Available)
	assert.Zero(t, analysis.RouteRiskScore)
	assert.Empty(t, analysis.NearbyAccidents)
	assert.Equal(t, 2, analysis.TotalAccidents)
	assert.Equal(t, map[string]int{"Minor": 1, "Serious": 1}, analysis.SeverityDistribution)
}

func TestAnalyzeRouteProximity_DistanceRounding(t *testing.T) {
	coords := [][2]float64{{26.9010, 75.8000}}

	analysis := AnalyzeRouteProximity(tableFromCoords(coords), testRoute)

	require.Len(t, analysis.NearbyAccidents, 1)
	d := analysis.NearbyAccidents[0].DistanceKm
	assert.Equal(t, d, float64(int(d*1000+0.5))/1000)
}
