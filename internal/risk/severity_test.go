package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0.0, LevelMinimal},
		{1.99, LevelMinimal},
		{2.0, LevelLow},
		{3.99, LevelLow},
		{4.0, LevelMedium},
		{5.99, LevelMedium},
		{6.0, LevelHigh},
		{7.99, LevelHigh},
		{8.0, LevelCritical},
		{10.0, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForScore(tt.score), "score %.2f", tt.score)
	}
}

func TestAggregateSeverity_FloorScore(t *testing.T) {
	// Zero-length route, no dataset, minimum perturbation: base 0.5 + 0.1.
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.9, EndLng: 75.8}

	result := AggregateSeverity(route, nil, nil, 0.1, "unavailable")

	assert.Equal(t, 0.6, result.Score)
	assert.Equal(t, LevelMinimal, result.Level)
	assert.Nil(t, result.Proximity)
	assert.Equal(t, "unavailable", result.RouteSummary.DataSource)
	assert.False(t, result.RouteSummary.CrossesHighRiskAreas)
}

func TestAggregateSeverity_DistanceFactorCapped(t *testing.T) {
	// A 100+ km route contributes at most 1.0 from distance.
	route := Route{StartLat: 26.0, StartLng: 75.0, EndLat: 27.0, EndLng: 76.0}

	result := AggregateSeverity(route, nil, nil, 0.1, "unavailable")

	assert.Equal(t, 1.0, result.Factors.DistanceFactor)
	assert.InDelta(t, 1.6, result.Score, 0.01)
}

func TestAggregateSeverity_ProximityContribution(t *testing.T) {
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.9, EndLng: 75.8}
	proximity := &ProximityAnalysis{
		Available:       true,
		RouteRiskScore:  0.9,
		NearbyWithin2Km: 3,
	}

	result := AggregateSeverity(route, proximity, nil, 0.1, "test")

	assert.Equal(t, 1.5, result.Score)
	assert.Equal(t, 0.9, result.Factors.ProximityFactor)
	assert.Equal(t, 3, result.Factors.NearbyAccidentCount)
	require.NotNil(t, result.Proximity)
}

func TestAggregateSeverity_UnavailableProximityIgnored(t *testing.T) {
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.9, EndLng: 75.8}
	proximity := &ProximityAnalysis{Available: false, TotalAccidents: 10}

	result := AggregateSeverity(route, proximity, nil, 0.1, "test")

	assert.Equal(t, 0.6, result.Score)
	assert.Zero(t, result.Factors.ProximityFactor)
}

func TestAggregateSeverity_AreaFactors(t *testing.T) {
	// One area right on the start endpoint, one out of range. Contribution
	// at zero distance is 2.0 * count * 0.1.
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.9, EndLng: 75.8}
	areas := []RiskArea{
		{Lat: 26.9, Lng: 75.8, Name: "High-risk area (5 accidents)", AccidentCount: 5},
		{Lat: 27.5, Lng: 76.5, Name: "High-risk area (8 accidents)", AccidentCount: 8},
	}

	result := AggregateSeverity(route, nil, areas, 0.1, "test")

	assert.Equal(t, 1.0, result.Factors.MaxAreaFactor)
	assert.True(t, result.RouteSummary.CrossesHighRiskAreas)

	// Start and end coincide, so the same area is in range of both
	// endpoints and both pairs are reported.
	require.Len(t, result.Factors.AreaFactors, 2)
	for _, af := range result.Factors.AreaFactors {
		assert.Equal(t, "High-risk area (5 accidents)", af.AreaName)
		assert.Equal(t, 5, af.AccidentCount)
		assert.Equal(t, 1.0, af.RiskContribution)
	}
	assert.Equal(t, "start", result.Factors.AreaFactors[0].Endpoint)
	assert.Equal(t, "end", result.Factors.AreaFactors[1].Endpoint)
}

func TestAggregateSeverity_OnlyStrongestAreaCounts(t *testing.T) {
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.9, EndLng: 75.8}
	areas := []RiskArea{
		{Lat: 26.9, Lng: 75.8, Name: "High-risk area (3 accidents)", AccidentCount: 3},
		{Lat: 26.9, Lng: 75.8, Name: "High-risk area (5 accidents)", AccidentCount: 5},
	}

	result := AggregateSeverity(route, nil, areas, 0.1, "test")

	// 2.0 * 5 * 0.1, not the sum of both areas.
	assert.Equal(t, 1.0, result.Factors.MaxAreaFactor)
	assert.Len(t, result.Factors.AreaFactors, 4)
}

func TestAggregateSeverity_ScoreCapped(t *testing.T) {
	route := Route{StartLat: 26.0, StartLng: 75.0, EndLat: 27.0, EndLng: 76.0}
	proximity := &ProximityAnalysis{Available: true, RouteRiskScore: 4.0}
	areas := []RiskArea{
		{Lat: 26.0, Lng: 75.0, Name: "High-risk area (200 accidents)", AccidentCount: 200},
	}

	result := AggregateSeverity(route, proximity, areas, 0.5, "test")

	assert.Equal(t, 10.0, result.Score)
	assert.Equal(t, LevelCritical, result.Level)
}

func TestAggregateSeverity_MonotonicInPerturbation(t *testing.T) {
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.85, EndLng: 75.82}

	low := AggregateSeverity(route, nil, nil, 0.1, "test")
	high := AggregateSeverity(route, nil, nil, 0.5, "test")

	assert.Less(t, low.Score, high.Score)
	assert.InDelta(t, 0.4, high.Score-low.Score, 0.011)
}

func TestAggregateSeverity_RouteSummary(t *testing.T) {
	route := Route{StartLat: 26.9, StartLng: 75.8, EndLat: 26.85, EndLng: 75.82}

	result := AggregateSeverity(route, nil, nil, 0.1, "csv:data.csv")

	d := Haversine(route.StartLat, route.StartLng, route.EndLat, route.EndLng)
	assert.Equal(t, math.Round(d*100)/100, result.RouteSummary.TotalDistanceKm)
	assert.Equal(t, math.Round(d*4*10)/10, result.RouteSummary.EstimatedTravelMinutes)
	assert.Equal(t, "csv:data.csv", result.RouteSummary.DataSource)
	assert.Equal(t, route.StartLat, result.RouteSummary.StartLat)
	assert.Equal(t, route.EndLng, result.RouteSummary.EndLng)
}
