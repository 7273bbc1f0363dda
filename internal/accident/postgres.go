package accident

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
)

// PostgresSource loads the accident dataset from a PostgreSQL table.
// Every column of the configured table is read; coordinate discovery runs
// on the column names exactly as it does for CSV input.
type PostgresSource struct {
	Pool      *pgxpool.Pool
	TableName string
	Clock     clockwork.Clock
}

// NewPostgresSource creates a Postgres-backed dataset source.
func NewPostgresSource(pool *pgxpool.Pool, tableName string) *PostgresSource {
	return &PostgresSource{
		Pool:      pool,
		TableName: tableName,
		Clock:     clockwork.NewRealClock(),
	}
}

// Name implements Source.
func (s *PostgresSource) Name() string {
	return "postgres:" + s.TableName
}

// Fetch implements Source. Rows are ordered by ctid so repeated loads of an
// unchanged table produce the same iteration order.
func (s *PostgresSource) Fetch(ctx context.Context) (*Table, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY ctid", s.TableName) //nolint:gosec // table name comes from config, not request input

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", ErrSourceUnavailable, s.TableName, err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, d := range descs {
		columns[i] = d.Name
	}

	var tableRows []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row %d from %s: %w", len(tableRows)+1, s.TableName, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = formatValue(values[i])
		}
		tableRows = append(tableRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s: %v", ErrSourceUnavailable, s.TableName, err)
	}
	if len(tableRows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrSourceUnavailable, s.TableName)
	}

	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return NewTable(columns, tableRows, s.Name(), clock.Now()), nil
}

// formatValue renders a database value in the same textual form the CSV
// parser would see, so downstream numeric coercion behaves identically.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

var _ Source = (*PostgresSource)(nil)
