package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/api/middleware"
	"github.com/roadrisk/roadrisk/internal/api/models"
	"github.com/roadrisk/roadrisk/internal/api/response"
	"github.com/roadrisk/roadrisk/internal/risk"
)

// DatasetHandler handles dataset inspection and admin reload endpoints.
type DatasetHandler struct {
	engine *risk.Engine
	store  *accident.Store
	logger zerolog.Logger
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(engine *risk.Engine, store *accident.Store, logger zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{engine: engine, store: store, logger: logger}
}

// GetDatasetInfo handles GET /v1/dataset - describe the loaded dataset.
func (h *DatasetHandler) GetDatasetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.engine.DatasetInfo(r.Context())
	if err != nil {
		if errors.Is(err, risk.ErrDatasetUnavailable) {
			response.NotFound(w, r, "accident dataset not loaded")
			return
		}
		response.InternalError(w, r, "dataset inspection failed")
		return
	}

	resp := models.DatasetInfoResponse{
		Source:               info.Source,
		LoadedAt:             models.Timestamp(info.LoadedAt),
		TotalRecords:         info.TotalRecords,
		Columns:              info.Columns,
		LatColumn:            info.LatColumn,
		LngColumn:            info.LngColumn,
		CoordinatesAvailable: info.CoordinatesAvailable,
		SpatialPoints:        info.SpatialPoints,
		SampleData:           make([]map[string]string, 0, len(info.SampleRows)),
		ColumnTypes: models.ColumnTypes{
			Numeric: info.ColumnSummary.Numeric,
			Text:    info.ColumnSummary.Text,
			Date:    info.ColumnSummary.Date,
		},
		SeverityDistribution: info.SeverityDistribution,
		TimeColumns:          info.TimeColumns,
	}
	for _, row := range info.SampleRows {
		resp.SampleData = append(resp.SampleData, row)
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// ReloadDataset handles POST /v1/admin/dataset:reload - fetch a fresh
// snapshot from the configured source. Requires an admin token.
func (h *DatasetHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	operator := middleware.GetOperator(r.Context())

	table, err := h.store.Reload(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("operator", operator).Msg("admin dataset reload failed")
		response.ServiceUnavailable(w, r, "dataset source unreachable")
		return
	}

	h.logger.Info().
		Str("operator", operator).
		Str("source", table.Source).
		Int("records", table.Len()).
		Msg("dataset reloaded by operator")

	response.JSON(w, r, http.StatusOK, models.DatasetReloadResponse{
		Source:        table.Source,
		TotalRecords:  table.Len(),
		SpatialPoints: len(table.Points()),
		ReloadedAt:    models.Timestamp(time.Now()),
	})
}
