package models

// DatasetInfoResponse describes the current accident dataset snapshot.
type DatasetInfoResponse struct {
	Source               string              `json:"source"`
	LoadedAt             Timestamp           `json:"loadedAt"`
	TotalRecords         int                 `json:"totalRecords"`
	Columns              []string            `json:"columns"`
	LatColumn            string              `json:"latColumn,omitempty"`
	LngColumn            string              `json:"lngColumn,omitempty"`
	CoordinatesAvailable bool                `json:"coordinatesAvailable"`
	SpatialPoints        int                 `json:"spatialPoints"`
	SampleData           []map[string]string `json:"sampleData"`
	ColumnTypes          ColumnTypes         `json:"columnTypes"`
	SeverityDistribution map[string]int      `json:"severityDistribution,omitempty"`
	TimeColumns          []string            `json:"timeColumns,omitempty"`
}

// ColumnTypes classifies dataset columns by content.
type ColumnTypes struct {
	Numeric []string `json:"numericColumns"`
	Text    []string `json:"textColumns"`
	Date    []string `json:"dateColumns"`
}

// DatasetReloadResponse reports the outcome of an admin-triggered reload.
type DatasetReloadResponse struct {
	Source        string    `json:"source"`
	TotalRecords  int       `json:"totalRecords"`
	SpatialPoints int       `json:"spatialPoints"`
	ReloadedAt    Timestamp `json:"reloadedAt"`
}
