package models

// CityBounds describes the coverage area of the deployed dataset, with the
// headline risk areas derived from the current snapshot.
type CityBounds struct {
	City   string `json:"city"`
	Bounds GeoBox `json:"bounds"`
	Center Point  `json:"center"`

	// HighRiskAreas lists the top clusters from the loaded dataset. Empty
	// when no dataset is available.
	HighRiskAreas      []RiskArea `json:"highRiskAreas"`
	TotalHighRiskAreas int        `json:"totalHighRiskAreas"`
}

// SampleRequest documents an example scoring call for API consumers.
type SampleRequest struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Body        RouteScoreRequest `json:"body"`
	Bounds      GeoBox            `json:"bounds"`
	Description string            `json:"description"`
}
