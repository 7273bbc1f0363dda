// Package handler provides HTTP handlers for the RoadRisk API.
package handler

import (
	"net/http"
	"time"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/api/models"
	"github.com/roadrisk/roadrisk/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	store     *accident.Store
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, store *accident.Store) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		store:     store,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// stays ready without a dataset (scoring degrades rather than fails), so a
// missing snapshot reports DEGRADED with a 200.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	details := map[string]interface{}{}

	if table, ok := h.store.Snapshot(); ok {
		details["datasetSource"] = table.Source
		details["datasetRecords"] = table.Len()
	} else {
		status = models.HealthStatusDegraded
		details["datasetSource"] = "unavailable"
	}

	health := models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	}
	response.JSON(w, r, http.StatusOK, health)
}
