package models

// RouteScoreRequest is the body of POST /v1/routes:score. Coordinates are
// pointers so missing fields can be reported individually.
type RouteScoreRequest struct {
	StartLat *float64 `json:"startLat"`
	StartLng *float64 `json:"startLng"`
	EndLat   *float64 `json:"endLat"`
	EndLng   *float64 `json:"endLng"`
}

// RouteScoreResponse is the scored route returned by POST /v1/routes:score.
type RouteScoreResponse struct {
	RiskScore       float64          `json:"riskScore"`
	RiskLevel       RiskLevel        `json:"riskLevel"`
	Factors         RiskFactors      `json:"factors"`
	RouteSummary    RouteSummary     `json:"routeSummary"`
	DatasetAnalysis *DatasetAnalysis `json:"datasetAnalysis,omitempty"`
	GeneratedAt     Timestamp        `json:"generatedAt"`
}

// RiskFactors breaks a risk score down into its contributions.
type RiskFactors struct {
	RouteDistanceKm     float64      `json:"routeDistanceKm"`
	DistanceFactor      float64      `json:"distanceFactor"`
	ProximityFactor     float64      `json:"proximityFactor"`
	NearbyAccidentCount int          `json:"nearbyAccidentCount"`
	AreaFactors         []AreaFactor `json:"areaFactors"`
	MaxAreaFactor       float64      `json:"maxAreaFactor"`
	ConditionsFactor    float64      `json:"conditionsFactor"`
}

// AreaFactor reports a route endpoint's proximity to one high-risk area.
type AreaFactor struct {
	AreaName         string  `json:"areaName"`
	DistanceKm       float64 `json:"distanceKm"`
	Endpoint         string  `json:"endpoint"`
	AccidentCount    int     `json:"accidentCount"`
	RiskContribution float64 `json:"riskContribution"`
}

// RouteSummary is descriptive metadata for a scored route.
type RouteSummary struct {
	Start                  Point   `json:"start"`
	End                    Point   `json:"end"`
	TotalDistanceKm        float64 `json:"totalDistanceKm"`
	EstimatedTravelMinutes float64 `json:"estimatedTravelMinutes"`
	CrossesHighRiskAreas   bool    `json:"crossesHighRiskAreas"`
	DataSource             string  `json:"dataSource"`
}

// DatasetAnalysis is the dataset-derived view of a scored route. Omitted
// entirely when no dataset snapshot was loaded.
type DatasetAnalysis struct {
	Available                bool             `json:"available"`
	TotalAccidents           int              `json:"totalAccidents"`
	NearbyAccidents          []NearbyAccident `json:"nearbyAccidents"`
	NearbyAccidentsWithin2Km int              `json:"nearbyAccidentsWithin2Km"`
	RouteRiskScore           float64          `json:"routeRiskScore"`
	SeverityDistribution     map[string]int   `json:"severityDistribution,omitempty"`
	TimeColumns              []string         `json:"timeColumns,omitempty"`
}

// NearbyAccident is a historical accident close to a route endpoint.
type NearbyAccident struct {
	DistanceKm float64           `json:"distanceKm"`
	Lat        float64           `json:"lat"`
	Lng        float64           `json:"lng"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// RiskArea is a cluster of historical accidents dense enough to flag.
type RiskArea struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Name          string  `json:"name"`
	AccidentCount int     `json:"accidentCount"`
}

// RiskAreasResponse is the body of GET /v1/risk-areas.
type RiskAreasResponse struct {
	RadiusKm    float64    `json:"radiusKm"`
	Count       int        `json:"count"`
	Areas       []RiskArea `json:"areas"`
	GeneratedAt Timestamp  `json:"generatedAt"`
}
