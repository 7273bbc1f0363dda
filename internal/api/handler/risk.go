package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/roadrisk/roadrisk/internal/api/models"
	"github.com/roadrisk/roadrisk/internal/api/response"
	"github.com/roadrisk/roadrisk/internal/risk"
)

// RiskHandler handles route scoring and risk area endpoints.
type RiskHandler struct {
	engine *risk.Engine
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(engine *risk.Engine) *RiskHandler {
	return &RiskHandler{engine: engine}
}

// ScoreRoute handles POST /v1/routes:score - score a route's accident risk.
func (h *RiskHandler) ScoreRoute(w http.ResponseWriter, r *http.Request) {
	var input models.RouteScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := missingCoordinates(input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "all four route coordinates are required", fieldErrors)
		return
	}

	route := risk.Route{
		StartLat: *input.StartLat,
		StartLng: *input.StartLng,
		EndLat:   *input.EndLat,
		EndLng:   *input.EndLng,
	}

	result, err := h.engine.ScoreRoute(r.Context(), route)
	if err != nil {
		var verr *risk.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, r, "invalid route coordinates", []models.FieldError{
				{Field: verr.Field, Message: verr.Message, Code: "OUT_OF_RANGE"},
			})
			return
		}
		response.InternalError(w, r, "scoring failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toRouteScoreResponse(result))
}

// ListRiskAreas handles GET /v1/risk-areas - recompute accident clusters.
func (h *RiskHandler) ListRiskAreas(w http.ResponseWriter, r *http.Request) {
	radiusKm := risk.DefaultClusterRadiusKm
	if raw := r.URL.Query().Get("radiusKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "radiusKm must be a positive number", []models.FieldError{
				{Field: "radiusKm", Message: "must be a positive number"},
			})
			return
		}
		radiusKm = parsed
	}

	areas, err := h.engine.HighRiskAreas(r.Context(), radiusKm)
	if err != nil {
		if errors.Is(err, risk.ErrDatasetUnavailable) {
			response.NotFound(w, r, "accident dataset not loaded")
			return
		}
		response.InternalError(w, r, "risk area computation failed")
		return
	}

	resp := models.RiskAreasResponse{
		RadiusKm:    radiusKm,
		Count:       len(areas),
		Areas:       make([]models.RiskArea, 0, len(areas)),
		GeneratedAt: models.Timestamp(time.Now()),
	}
	for _, a := range areas {
		resp.Areas = append(resp.Areas, models.RiskArea{
			Lat:           a.Lat,
			Lng:           a.Lng,
			Name:          a.Name,
			AccidentCount: a.AccidentCount,
		})
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func missingCoordinates(input models.RouteScoreRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	for _, c := range []struct {
		field string
		value *float64
	}{
		{"startLat", input.StartLat},
		{"startLng", input.StartLng},
		{"endLat", input.EndLat},
		{"endLng", input.EndLng},
	} {
		if c.value == nil {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: c.field, Message: "required", Code: "REQUIRED",
			})
		}
	}
	return fieldErrors
}

func toRouteScoreResponse(result *risk.SeverityResult) models.RouteScoreResponse {
	resp := models.RouteScoreResponse{
		RiskScore: result.Score,
		RiskLevel: models.RiskLevel(result.Level),
		Factors: models.RiskFactors{
			RouteDistanceKm:     result.Factors.RouteDistanceKm,
			DistanceFactor:      result.Factors.DistanceFactor,
			ProximityFactor:     result.Factors.ProximityFactor,
			NearbyAccidentCount: result.Factors.NearbyAccidentCount,
			AreaFactors:         make([]models.AreaFactor, 0, len(result.Factors.AreaFactors)),
			MaxAreaFactor:       result.Factors.MaxAreaFactor,
			ConditionsFactor:    result.Factors.ConditionsFactor,
		},
		RouteSummary: models.RouteSummary{
			Start:                  models.Point{Lat: result.RouteSummary.StartLat, Lng: result.RouteSummary.StartLng},
			End:                    models.Point{Lat: result.RouteSummary.EndLat, Lng: result.RouteSummary.EndLng},
			TotalDistanceKm:        result.RouteSummary.TotalDistanceKm,
			EstimatedTravelMinutes: result.RouteSummary.EstimatedTravelMinutes,
			CrossesHighRiskAreas:   result.RouteSummary.CrossesHighRiskAreas,
			DataSource:             result.RouteSummary.DataSource,
		},
		GeneratedAt: models.Timestamp(time.Now()),
	}

	for _, af := range result.Factors.AreaFactors {
		resp.Factors.AreaFactors = append(resp.Factors.AreaFactors, models.AreaFactor{
			AreaName:         af.AreaName,
			DistanceKm:       af.DistanceKm,
			Endpoint:         af.Endpoint,
			AccidentCount:    af.AccidentCount,
			RiskContribution: af.RiskContribution,
		})
	}

	if p := result.Proximity; p != nil {
		analysis := &models.DatasetAnalysis{
			Available:                p.Available,
			TotalAccidents:           p.TotalAccidents,
			NearbyAccidents:          make([]models.NearbyAccident, 0, len(p.NearbyAccidents)),
			NearbyAccidentsWithin2Km: p.NearbyWithin2Km,
			RouteRiskScore:           p.RouteRiskScore,
			SeverityDistribution:     p.SeverityDistribution,
			TimeColumns:              p.TimeColumns,
		}
		for _, acc := range p.NearbyAccidents {
			analysis.NearbyAccidents = append(analysis.NearbyAccidents, models.NearbyAccident{
				DistanceKm: acc.DistanceKm,
				Lat:        acc.Lat,
				Lng:        acc.Lng,
				Attributes: acc.Attributes,
			})
		}
		resp.DatasetAnalysis = analysis
	}

	return resp
}
