// Package observability provides Prometheus metrics for the risk engine and
// dataset pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	// Scoring.
	RoutesScored  *prometheus.CounterVec
	ScoreDuration prometheus.Histogram

	// Risk area queries.
	RiskAreaQueries prometheus.Counter
	RiskAreasFound  prometheus.Histogram

	// Dataset lifecycle.
	DatasetReloads *prometheus.CounterVec
	DatasetRecords prometheus.Gauge
	SpatialPoints  prometheus.Gauge

	// Degraded-mode observations. Incremented whenever a query runs
	// without a usable dataset snapshot.
	DegradedQueries prometheus.Counter
}

// NewMetrics creates and registers all collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RoutesScored: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "routes_scored_total",
			Help:      "Routes scored, labeled by resulting severity level.",
		}, []string{"level"}),
		ScoreDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "roadrisk",
			Name:      "score_duration_seconds",
			Help:      "Wall time spent scoring a single route.",
			Buckets:   prometheus.DefBuckets,
		}),
		RiskAreaQueries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "risk_area_queries_total",
			Help:      "High-risk area computations performed.",
		}),
		RiskAreasFound: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "roadrisk",
			Name:      "risk_areas_found",
			Help:      "Risk areas returned per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10},
		}),
		DatasetReloads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts, labeled by outcome.",
		}, []string{"status"}),
		DatasetRecords: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "roadrisk",
			Name:      "dataset_records",
			Help:      "Rows in the current dataset snapshot.",
		}),
		SpatialPoints: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "roadrisk",
			Name:      "dataset_spatial_points",
			Help:      "Rows with parseable coordinates in the current snapshot.",
		}),
		DegradedQueries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "degraded_queries_total",
			Help:      "Queries answered without a dataset snapshot.",
		}),
	}
}

// NewMetricsForTesting returns metrics registered against a throwaway
// registry so tests never collide on the default one.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
