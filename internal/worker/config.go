// Package worker provides background job processing for RoadRisk.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the dataset refresh job.
type RefreshConfig struct {
	// Interval between scheduled refreshes. Default: 6 hours. Accident
	// datasets update slowly; frequent reloads just hammer the source.
	Interval time.Duration

	// Timeout for a single refresh run. Default: 2 minutes.
	Timeout time.Duration

	// MinSpatialRatio is the minimum fraction of rows that must carry
	// valid coordinates for a snapshot to be considered healthy.
	// Default: 0.5.
	MinSpatialRatio float64

	// WarmClusterRadiiKm lists cluster radii to precompute after each
	// reload so the first API queries hit warm code paths. Default: the
	// engine's default radius only.
	WarmClusterRadiiKm []float64
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Interval:           6 * time.Hour,
		Timeout:            2 * time.Minute,
		MinSpatialRatio:    0.5,
		WarmClusterRadiiKm: []float64{5.0},
	}
}

// withDefaults fills zero values with defaults.
func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MinSpatialRatio <= 0 {
		c.MinSpatialRatio = def.MinSpatialRatio
	}
	if len(c.WarmClusterRadiiKm) == 0 {
		c.WarmClusterRadiiKm = def.WarmClusterRadiiKm
	}
	return c
}
