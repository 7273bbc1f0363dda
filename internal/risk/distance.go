// Package risk implements the accident-risk scoring engine: high-risk area
// detection, route proximity analysis, and severity aggregation over the
// historical accident dataset.
package risk

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometers between two
// coordinates given in degrees. The arcsine argument is clamped so that
// floating-point round-off near coincident or antipodal points cannot
// produce a domain error.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)

	root := math.Sqrt(a)
	if root > 1 {
		root = 1
	}
	c := 2 * math.Asin(root)

	return earthRadiusKm * c
}

// round1, round2, and round3 round to 1, 2, and 3 decimal places. Scoring
// output is rounded at fixed precisions so responses are stable across runs.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
