// Package accident provides the historical accident dataset: parsing,
// coordinate column discovery, and the process-wide snapshot store.
package accident

import (
	"strconv"
	"strings"
	"time"
)

// Row is a single record from the dataset, keyed by column name.
// Values are kept verbatim as loaded; only the coordinate columns are
// interpreted numerically.
type Row map[string]string

// Point is a spatially valid record: a row whose coordinate values parsed
// as numbers. Index is the row's position in the table and fixes the
// canonical iteration order for all spatial operations.
type Point struct {
	Index int
	Lat   float64
	Lng   float64
}

// Table is an immutable snapshot of the accident dataset. It is built once
// by a Source and never mutated; the Store swaps whole tables on reload.
type Table struct {
	Columns  []string
	Rows     []Row
	Source   string
	LoadedAt time.Time

	latCol string
	lngCol string
	points []Point
}

// NewTable builds a table from parsed columns and rows, discovering the
// coordinate columns and extracting the valid spatial points in row order.
func NewTable(columns []string, rows []Row, source string, loadedAt time.Time) *Table {
	t := &Table{
		Columns:  columns,
		Rows:     rows,
		Source:   source,
		LoadedAt: loadedAt,
	}
	t.latCol, t.lngCol = findCoordinateColumns(columns)
	if t.latCol != "" && t.lngCol != "" {
		for i, row := range rows {
			lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[t.latCol]), 64)
			lng, lngErr := strconv.ParseFloat(strings.TrimSpace(row[t.lngCol]), 64)
			if latErr != nil || lngErr != nil {
				// Row keeps counting toward non-spatial aggregates.
				continue
			}
			t.points = append(t.points, Point{Index: i, Lat: lat, Lng: lng})
		}
	}
	return t
}

// findCoordinateColumns identifies the latitude column as the first column
// whose name contains "lat" and the longitude column as the first whose name
// contains "lng" or "lon", both case-insensitive.
func findCoordinateColumns(columns []string) (latCol, lngCol string) {
	for _, col := range columns {
		name := strings.ToLower(col)
		if latCol == "" && strings.Contains(name, "lat") {
			latCol = col
		}
		if lngCol == "" && (strings.Contains(name, "lng") || strings.Contains(name, "lon")) {
			lngCol = col
		}
	}
	return latCol, lngCol
}

// Len returns the total number of rows, including rows without valid coordinates.
func (t *Table) Len() int {
	return len(t.Rows)
}

// CoordinateColumns returns the discovered latitude and longitude column
// names. ok is false when either is missing, in which case spatial
// operations must degrade to an "unavailable" result.
func (t *Table) CoordinateColumns() (latCol, lngCol string, ok bool) {
	return t.latCol, t.lngCol, t.latCol != "" && t.lngCol != ""
}

// Points returns the spatially valid records in canonical (row) order.
func (t *Table) Points() []Point {
	return t.points
}

// Attributes returns the non-coordinate attributes of a row, with column
// names lowercased and spaces replaced by underscores. Empty values are
// omitted.
func (t *Table) Attributes(rowIndex int) map[string]string {
	row := t.Rows[rowIndex]
	attrs := make(map[string]string)
	for _, col := range t.Columns {
		if col == t.latCol || col == t.lngCol {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(col), " ", "_")
		attrs[key] = v
	}
	return attrs
}

// SeverityColumn returns the first column whose name contains "severity",
// or "" when none exists.
func (t *Table) SeverityColumn() string {
	for _, col := range t.Columns {
		if strings.Contains(strings.ToLower(col), "severity") {
			return col
		}
	}
	return ""
}

// SeverityDistribution returns value counts for the severity column, or nil
// when the dataset has no severity column.
func (t *Table) SeverityDistribution() map[string]int {
	col := t.SeverityColumn()
	if col == "" {
		return nil
	}
	dist := make(map[string]int)
	for _, row := range t.Rows {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		dist[v]++
	}
	return dist
}

// TimeColumns returns the columns whose names suggest temporal data
// (containing "time", "date", or "hour").
func (t *Table) TimeColumns() []string {
	var cols []string
	for _, col := range t.Columns {
		name := strings.ToLower(col)
		if strings.Contains(name, "time") || strings.Contains(name, "date") || strings.Contains(name, "hour") {
			cols = append(cols, col)
		}
	}
	return cols
}

// SampleRows returns up to n rows from the top of the table.
func (t *Table) SampleRows(n int) []Row {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// ColumnSummary classifies columns by their content and name.
type ColumnSummary struct {
	Numeric []string `json:"numeric_columns"`
	Text    []string `json:"text_columns"`
	Date    []string `json:"date_columns"`
}

// Summarize classifies each column as numeric (every non-empty value parses
// as a number), date (name contains "date" or "time"), or text.
func (t *Table) Summarize() ColumnSummary {
	summary := ColumnSummary{
		Numeric: []string{},
		Text:    []string{},
		Date:    []string{},
	}
	for _, col := range t.Columns {
		switch {
		case t.columnIsNumeric(col):
			summary.Numeric = append(summary.Numeric, col)
		case strings.Contains(strings.ToLower(col), "date") || strings.Contains(strings.ToLower(col), "time"):
			summary.Date = append(summary.Date, col)
		default:
			summary.Text = append(summary.Text, col)
		}
	}
	return summary
}

func (t *Table) columnIsNumeric(col string) bool {
	seen := false
	for _, row := range t.Rows {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return seen
}
