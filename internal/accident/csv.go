package accident

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// CSV parsing errors.
var (
	ErrEmptyCSV = errors.New("csv contains no data rows")
)

// ParseCSV reads an accident dataset from CSV. Header names are trimmed,
// short records are padded, and rows with every field empty are dropped.
// Coordinate validity is decided per row when the table is built.
func ParseCSV(r io.Reader, source string, loadedAt time.Time) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCSV
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(rows)+2, err)
		}

		row := make(Row, len(columns))
		empty := true
		for i, col := range columns {
			if i >= len(record) {
				break
			}
			v := record[i]
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			row[col] = v
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyCSV
	}

	return NewTable(columns, rows, source, loadedAt), nil
}
