package risk

import (
	"sort"

	"github.com/roadrisk/roadrisk/internal/accident"
)

// Proximity thresholds and weights. A point contributes to the running
// route risk score based on how close it is to the nearer route endpoint.
const (
	veryCloseKm     = 0.5
	closeKm         = 1.0
	nearbyKm        = 2.0
	inclusionKm     = 3.0
	veryCloseWeight = 3.0
	closeWeight     = 2.0
	nearbyWeight    = 1.0

	// routeRiskScale and routeRiskCap bound the accumulated score so a
	// dense dataset cannot dominate the severity aggregation.
	routeRiskScale = 0.1
	routeRiskCap   = 4.0

	// maxNearbyAccidents caps the reported nearest-accident list.
	maxNearbyAccidents = 15
)

// NearbyAccident is a historical accident within the inclusion radius of a
// route endpoint. Attributes carries every non-coordinate column of the
// source row verbatim.
type NearbyAccident struct {
	DistanceKm float64
	Lat        float64
	Lng        float64
	Attributes map[string]string
}

// ProximityAnalysis is the dataset-derived view of a route: the bounded
// route risk score and the accidents closest to either endpoint.
type ProximityAnalysis struct {
	// Available is false when the dataset has no identifiable coordinate
	// columns. Callers must distinguish this from a legitimate zero score.
	Available bool

	TotalAccidents  int
	NearbyAccidents []NearbyAccident

	// NearbyWithin2Km counts nearby accidents inside the tighter 2 km
	// sub-threshold, reported as a separate risk indicator.
	NearbyWithin2Km int

	// RouteRiskScore is the scaled, capped proximity contribution in
	// [0, routeRiskCap].
	RouteRiskScore float64

	SeverityDistribution map[string]int
	TimeColumns          []string
}

// AnalyzeRouteProximity scores a route against every valid accident point.
// For each point the distance to the nearer of the two route endpoints
// decides its contribution; points within the inclusion radius are also
// collected, sorted by distance, and truncated to the closest few.
func AnalyzeRouteProximity(table *accident.Table, route Route) ProximityAnalysis {
	analysis := ProximityAnalysis{
		NearbyAccidents: []NearbyAccident{},
	}
	if table == nil {
		return analysis
	}

	analysis.TotalAccidents = table.Len()
	analysis.SeverityDistribution = table.SeverityDistribution()
	analysis.TimeColumns = table.TimeColumns()

	if _, _, ok := table.CoordinateColumns(); !ok {
		return analysis
	}
	analysis.Available = true

	var score float64
	var nearby []NearbyAccident

	for _, p := range table.Points() {
		distToStart := Haversine(route.StartLat, route.StartLng, p.Lat, p.Lng)
		distToEnd := Haversine(route.EndLat, route.EndLng, p.Lat, p.Lng)
		minDistance := distToStart
		if distToEnd < minDistance {
			minDistance = distToEnd
		}

		switch {
		case minDistance <= veryCloseKm:
			score += veryCloseWeight
		case minDistance <= closeKm:
			score += closeWeight
		case minDistance <= nearbyKm:
			score += nearbyWeight
		}

		if minDistance <= inclusionKm {
			nearby = append(nearby, NearbyAccident{
				DistanceKm: round3(minDistance),
				Lat:        p.Lat,
				Lng:        p.Lng,
				Attributes: table.Attributes(p.Index),
			})
		}
	}

	sort.SliceStable(nearby, func(a, b int) bool {
		return nearby[a].DistanceKm < nearby[b].DistanceKm
	})

	for _, acc := range nearby {
		if acc.DistanceKm <= nearbyKm {
			analysis.NearbyWithin2Km++
		}
	}

	if len(nearby) > maxNearbyAccidents {
		nearby = nearby[:maxNearbyAccidents]
	}
	analysis.NearbyAccidents = nearby

	scaled := score * routeRiskScale
	if scaled > routeRiskCap {
		scaled = routeRiskCap
	}
	analysis.RouteRiskScore = scaled

	return analysis
}
