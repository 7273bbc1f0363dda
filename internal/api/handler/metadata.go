package handler

import (
	"net/http"

	"github.com/roadrisk/roadrisk/internal/api/models"
	"github.com/roadrisk/roadrisk/internal/api/response"
	"github.com/roadrisk/roadrisk/internal/risk"
)

// Jaipur city bounds, matching the reference deployment's dataset coverage.
const (
	jaipurMinLat = 26.8089
	jaipurMaxLat = 26.9124
	jaipurMinLng = 75.7873
	jaipurMaxLng = 75.8573

	jaipurCenterLat = 26.9124
	jaipurCenterLng = 75.7873
)

// topRiskAreasShown bounds the headline area list on the bounds endpoint.
const topRiskAreasShown = 5

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	engine *risk.Engine
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(engine *risk.Engine) *MetadataHandler {
	return &MetadataHandler{engine: engine}
}

// GetCityBounds handles GET /v1/metadata/bounds - the coverage area of the
// deployed dataset plus its headline risk areas. A missing dataset yields
// bounds with an empty area list rather than an error.
func (h *MetadataHandler) GetCityBounds(w http.ResponseWriter, r *http.Request) {
	bounds := models.CityBounds{
		City: "Jaipur",
		Bounds: models.GeoBox{
			MinLat: jaipurMinLat,
			MinLng: jaipurMinLng,
			MaxLat: jaipurMaxLat,
			MaxLng: jaipurMaxLng,
		},
		Center:        models.Point{Lat: jaipurCenterLat, Lng: jaipurCenterLng},
		HighRiskAreas: []models.RiskArea{},
	}

	if areas, err := h.engine.HighRiskAreas(r.Context(), 0); err == nil {
		bounds.TotalHighRiskAreas = len(areas)
		if len(areas) > topRiskAreasShown {
			areas = areas[:topRiskAreasShown]
		}
		for _, a := range areas {
			bounds.HighRiskAreas = append(bounds.HighRiskAreas, models.RiskArea{
				Lat:           a.Lat,
				Lng:           a.Lng,
				Name:          a.Name,
				AccidentCount: a.AccidentCount,
			})
		}
	}

	response.JSON(w, r, http.StatusOK, bounds)
}

// GetSampleRequest handles GET /v1/metadata/sample-request - an example
// scoring call for API consumers.
func (h *MetadataHandler) GetSampleRequest(w http.ResponseWriter, r *http.Request) {
	startLat, startLng := jaipurCenterLat, jaipurCenterLng
	endLat, endLng := 26.8851, 75.8073

	sample := models.SampleRequest{
		Method: http.MethodPost,
		Path:   "/v1/routes:score",
		Body: models.RouteScoreRequest{
			StartLat: &startLat,
			StartLng: &startLng,
			EndLat:   &endLat,
			EndLng:   &endLng,
		},
		Bounds: models.GeoBox{
			MinLat: jaipurMinLat,
			MinLng: jaipurMinLng,
			MaxLat: jaipurMaxLat,
			MaxLng: jaipurMaxLng,
		},
		Description: "Coordinates should preferably be within the covered city area for best results.",
	}
	response.JSON(w, r, http.StatusOK, sample)
}
