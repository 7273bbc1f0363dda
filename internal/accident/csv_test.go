package accident

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"latitude, longitude, Severity",
		"26.91,75.79,Fatal",
		"26.92,75.80,Minor",
	}, "\n")

	table, err := ParseCSV(strings.NewReader(input), "csv:test.csv", time.Unix(100, 0))

	require.NoError(t, err)
	assert.Equal(t, []string{"latitude", "longitude", "Severity"}, table.Columns)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "csv:test.csv", table.Source)
	assert.Equal(t, time.Unix(100, 0), table.LoadedAt)
	assert.Len(t, table.Points(), 2)
}

func TestParseCSV_RaggedRows(t *testing.T) {
	// Short records are padded; values beyond the header are dropped.
	input := strings.Join([]string{
		"latitude,longitude,Severity",
		"26.91,75.79",
		"26.92,75.80,Minor,extra",
	}, "\n")

	table, err := ParseCSV(strings.NewReader(input), "test", time.Unix(0, 0))

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "", table.Rows[0]["Severity"])
	assert.Equal(t, "Minor", table.Rows[1]["Severity"])
}

func TestParseCSV_BlankRowsDropped(t *testing.T) {
	input := strings.Join([]string{
		"latitude,longitude",
		"26.91,75.79",
		",",
		"26.92,75.80",
	}, "\n")

	table, err := ParseCSV(strings.NewReader(input), "test", time.Unix(0, 0))

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), "test", time.Unix(0, 0))
	assert.ErrorIs(t, err, ErrEmptyCSV)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("latitude,longitude\n"), "test", time.Unix(0, 0))
	assert.ErrorIs(t, err, ErrEmptyCSV)
}

func TestParseCSV_NonNumericCoordinatesKept(t *testing.T) {
	input := strings.Join([]string{
		"latitude,longitude,Severity",
		"26.91,75.79,Fatal",
		"n/a,n/a,Minor",
	}, "\n")

	table, err := ParseCSV(strings.NewReader(input), "test", time.Unix(0, 0))

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Len(t, table.Points(), 1)
}
