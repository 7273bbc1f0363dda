package risk

import "math"

// Severity aggregation weights. Factors are accumulated in a fixed order;
// all terms are non-negative so the order only affects bookkeeping.
const (
	baseScore         = 0.5
	distancePerKm     = 0.3
	distanceFactorCap = 1.0
	areaRangeKm       = 2.0
	areaCountWeight   = 0.1
	maxSeverityScore  = 10.0

	// Perturbation bounds for the unmodeled-conditions term.
	minPerturbation = 0.1
	maxPerturbation = 0.5

	// minutesPerKm converts route distance to an estimated travel time.
	minutesPerKm = 4.0
)

// Route is a start/end coordinate pair to be scored. Input-only.
type Route struct {
	StartLat float64
	StartLng float64
	EndLat   float64
	EndLng   float64
}

// Level is the categorical severity band for a score.
type Level string

// Severity levels, most severe first.
const (
	LevelCritical Level = "CRITICAL"
	LevelHigh     Level = "HIGH"
	LevelMedium   Level = "MEDIUM"
	LevelLow      Level = "LOW"
	LevelMinimal  Level = "MINIMAL"
)

// LevelForScore maps a numeric severity score to its band. Thresholds are
// evaluated top-down; the first match wins.
func LevelForScore(score float64) Level {
	switch {
	case score >= 8.0:
		return LevelCritical
	case score >= 6.0:
		return LevelHigh
	case score >= 4.0:
		return LevelMedium
	case score >= 2.0:
		return LevelLow
	default:
		return LevelMinimal
	}
}

// AreaProximity reports one (endpoint, risk area) pair within range. Every
// in-range pair is reported for explainability even though only the single
// strongest contribution feeds the score.
type AreaProximity struct {
	AreaName         string
	DistanceKm       float64
	Endpoint         string
	AccidentCount    int
	RiskContribution float64
}

// Factors breaks the severity score down into its contributions.
type Factors struct {
	RouteDistanceKm     float64
	DistanceFactor      float64
	ProximityFactor     float64
	NearbyAccidentCount int
	AreaFactors         []AreaProximity
	MaxAreaFactor       float64
	ConditionsFactor    float64
}

// RouteSummary is descriptive route metadata attached to every result.
type RouteSummary struct {
	StartLat               float64
	StartLng               float64
	EndLat                 float64
	EndLng                 float64
	TotalDistanceKm        float64
	EstimatedTravelMinutes float64
	CrossesHighRiskAreas   bool
	DataSource             string
}

// SeverityResult is the aggregated outcome of scoring a route.
type SeverityResult struct {
	Score        float64
	Level        Level
	Factors      Factors
	RouteSummary RouteSummary

	// Proximity is nil when no dataset snapshot was available. When the
	// snapshot exists but has no coordinate columns, Proximity is present
	// with Available set to false.
	Proximity *ProximityAnalysis
}

// AggregateSeverity combines the independent risk signals into one score:
// base + capped distance factor + capped proximity score + the single
// strongest nearby-cluster contribution + the supplied perturbation. The
// sum is capped at maxSeverityScore and rounded to 2 decimals.
//
// perturbation must already lie in [minPerturbation, maxPerturbation]; the
// engine draws it from its randomness source so tests can pin the value.
func AggregateSeverity(route Route, proximity *ProximityAnalysis, areas []RiskArea, perturbation float64, dataSource string) *SeverityResult {
	score := baseScore

	routeDistance := Haversine(route.StartLat, route.StartLng, route.EndLat, route.EndLng)
	distanceFactor := math.Min(routeDistance*distancePerKm, distanceFactorCap)
	score += distanceFactor

	factors := Factors{
		RouteDistanceKm: round2(routeDistance),
		DistanceFactor:  round2(distanceFactor),
		AreaFactors:     []AreaProximity{},
	}

	if proximity != nil && proximity.Available {
		score += proximity.RouteRiskScore
		factors.ProximityFactor = round2(proximity.RouteRiskScore)
		factors.NearbyAccidentCount = proximity.NearbyWithin2Km
	}

	endpoints := []struct {
		name string
		lat  float64
		lng  float64
	}{
		{"start", route.StartLat, route.StartLng},
		{"end", route.EndLat, route.EndLng},
	}

	var maxAreaFactor float64
	for _, ep := range endpoints {
		for _, area := range areas {
			dist := Haversine(ep.lat, ep.lng, area.Lat, area.Lng)
			if dist > areaRangeKm {
				continue
			}
			contribution := math.Max(0, (areaRangeKm-dist)*float64(area.AccidentCount)*areaCountWeight)
			if contribution > maxAreaFactor {
				maxAreaFactor = contribution
			}
			factors.AreaFactors = append(factors.AreaFactors, AreaProximity{
				AreaName:         area.Name,
				DistanceKm:       round3(dist),
				Endpoint:         ep.name,
				AccidentCount:    area.AccidentCount,
				RiskContribution: round2(contribution),
			})
		}
	}
	score += maxAreaFactor
	factors.MaxAreaFactor = round2(maxAreaFactor)

	score += perturbation
	factors.ConditionsFactor = round2(perturbation)

	if score > maxSeverityScore {
		score = maxSeverityScore
	}
	score = round2(score)

	return &SeverityResult{
		Score:   score,
		Level:   LevelForScore(score),
		Factors: factors,
		RouteSummary: RouteSummary{
			StartLat:               route.StartLat,
			StartLng:               route.StartLng,
			EndLat:                 route.EndLat,
			EndLng:                 route.EndLng,
			TotalDistanceKm:        round2(routeDistance),
			EstimatedTravelMinutes: round1(routeDistance * minutesPerKm),
			CrossesHighRiskAreas:   len(factors.AreaFactors) > 0,
			DataSource:             dataSource,
		},
		Proximity: proximity,
	}
}
