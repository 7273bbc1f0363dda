package risk

import (
	"fmt"
	"sort"

	"github.com/roadrisk/roadrisk/internal/accident"
)

// Clustering parameters.
const (
	// DefaultClusterRadiusKm is the grouping radius when the caller does
	// not supply one.
	DefaultClusterRadiusKm = 5.0

	// minClusterSize is the smallest group that qualifies as a risk area.
	minClusterSize = 3

	// maxRiskAreas caps how many areas are returned, largest first.
	maxRiskAreas = 10
)

// RiskArea is a cluster of historical accidents dense enough to flag.
// Recomputed from the current snapshot on every query, never cached.
type RiskArea struct {
	Lat           float64
	Lng           float64
	Name          string
	AccidentCount int
}

// DetectHighRiskAreas groups accident points into risk areas using a greedy
// claim-based pass over the table:
//
//  1. Points are visited in table order; a point already claimed by an
//     earlier group is skipped.
//  2. The current point claims every still-unclaimed point within radiusKm
//     of it, itself included.
//  3. Groups of at least minClusterSize members become a RiskArea centered
//     on the mean of the member coordinates. Smaller groups emit nothing,
//     but their members stay claimed.
//
// The procedure is order-dependent by design: the table's row order is the
// canonical iteration order, which keeps results reproducible for an
// unchanged snapshot. This is not k-means or DBSCAN and must not be
// replaced by one; the greedy grouping is the defined behavior.
func DetectHighRiskAreas(table *accident.Table, radiusKm float64) []RiskArea {
	if table == nil {
		return []RiskArea{}
	}
	if radiusKm <= 0 {
		radiusKm = DefaultClusterRadiusKm
	}

	points := table.Points()
	claimed := make([]bool, len(points))
	areas := []RiskArea{}

	for i, p := range points {
		if claimed[i] {
			continue
		}

		var members []accident.Point
		for j, q := range points {
			if claimed[j] {
				continue
			}
			if Haversine(p.Lat, p.Lng, q.Lat, q.Lng) <= radiusKm {
				members = append(members, q)
				claimed[j] = true
			}
		}

		if len(members) < minClusterSize {
			continue
		}

		var sumLat, sumLng float64
		for _, m := range members {
			sumLat += m.Lat
			sumLng += m.Lng
		}
		n := float64(len(members))
		areas = append(areas, RiskArea{
			Lat:           sumLat / n,
			Lng:           sumLng / n,
			Name:          fmt.Sprintf("High-risk area (%d accidents)", len(members)),
			AccidentCount: len(members),
		})
	}

	// Stable sort keeps discovery order among equal-sized areas.
	sort.SliceStable(areas, func(a, b int) bool {
		return areas[a].AccidentCount > areas[b].AccidentCount
	})
	if len(areas) > maxRiskAreas {
		areas = areas[:maxRiskAreas]
	}
	return areas
}
