package dataprocessing

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktrend/internal/shared/testutil"
)

func TestParseWorkbook(t *testing.T) {
	data := testutil.BuildWorkbook(t, testutil.MonitoringRows())

	ds, err := ParseWorkbook(bytes.NewReader(data), int64(len(data)), DefaultParseOptions())
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", ds.Sheet)
	assert.Equal(t, []string{"Benzene", "Toluene"}, ds.Components)
	assert.Equal(t, []string{"PM-01", "PM-02"}, ds.Wells())
	require.Len(t, ds.Samples, 7)
	assert.Empty(t, ds.Warnings)

	first := ds.Samples[0]
	assert.Equal(t, "PM-01", first.Well)
	assert.Equal(t, "B", first.Column)
	assert.True(t, first.DateParsed)
	assert.Equal(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), first.Date)

	assert.Equal(t, Measurement{Value: 3, Present: true}, ds.Values[0][2])

	toluene := ds.Values[1]
	assert.Equal(t, Measurement{Value: 0.5, Present: true}, toluene[0])
	assert.Equal(t, Measurement{Value: 0.5, Present: true}, toluene[1])
	assert.Equal(t, Measurement{Value: 0.75, Present: true}, toluene[2])
	assert.False(t, toluene[3].Present)
}

func TestParseWorkbookExcelDates(t *testing.T) {
	rows := [][]interface{}{
		{"Well", "A", "A"},
		{"Date", time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), "44621"},
		{"Benzene", 1, 2},
	}
	data := testutil.BuildWorkbook(t, rows)

	ds, err := ParseWorkbook(bytes.NewReader(data), -1, DefaultParseOptions())
	require.NoError(t, err)

	require.Len(t, ds.Samples, 2)
	for _, s := range ds.Samples {
		assert.True(t, s.DateParsed, s.RawDate)
		assert.Equal(t, 2022, s.Date.Year())
		assert.Equal(t, time.March, s.Date.Month())
	}
}

func TestParseWorkbookWarnsOnUnparsedDates(t *testing.T) {
	rows := [][]interface{}{
		{"Well", "A", "A"},
		{"Date", "spring", "2024-01-01"},
		{"Benzene", 1, 2},
	}
	data := testutil.BuildWorkbook(t, rows)

	ds, err := ParseWorkbook(bytes.NewReader(data), -1, DefaultParseOptions())
	require.NoError(t, err)
	require.Len(t, ds.Warnings, 1)
	assert.Contains(t, ds.Warnings[0], `"spring"`)
	assert.False(t, ds.Samples[0].DateParsed)
}

func TestParseWorkbookErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]interface{}
		wantErr error
		msg     string
	}{
		{
			name:    "single row",
			rows:    [][]interface{}{{"Well", "A"}},
			wantErr: ErrInvalidWorkbook,
		},
		{
			name:    "no sample columns",
			rows:    [][]interface{}{{"Well"}, {"Date"}, {"Benzene"}},
			wantErr: ErrInvalidWorkbook,
		},
		{
			name:    "values without well",
			rows:    [][]interface{}{{"Well", "A", nil}, {"Date", "2024-01-01", "2024-02-01"}, {"Benzene", 1, 2}},
			wantErr: ErrInvalidWorkbook,
			msg:     "column C has readings but no well name",
		},
		{
			name:    "values without component",
			rows:    [][]interface{}{{"Well", "A"}, {"Date", "2024-01-01"}, {nil, 1}},
			wantErr: ErrInvalidWorkbook,
			msg:     "row 3 has readings but no component name",
		},
		{
			name:    "no components",
			rows:    [][]interface{}{{"Well", "A"}, {"Date", "2024-01-01"}},
			wantErr: ErrInvalidWorkbook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testutil.BuildWorkbook(t, tt.rows)
			_, err := ParseWorkbook(bytes.NewReader(data), int64(len(data)), DefaultParseOptions())
			require.ErrorIs(t, err, tt.wantErr)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestParseWorkbookCollectsInvalidValues(t *testing.T) {
	rows := testutil.MonitoringRows()
	rows[2][3] = "abc"
	rows[3][5] = "1,5"
	data := testutil.BuildWorkbook(t, rows)

	_, err := ParseWorkbook(bytes.NewReader(data), -1, DefaultParseOptions())

	var invalid *InvalidValuesError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, map[string][]string{
		"Benzene": {"abc"},
		"Toluene": {"1,5"},
	}, invalid.Components)
}

func TestParseWorkbookSizeLimit(t *testing.T) {
	data := testutil.BuildWorkbook(t, testutil.MonitoringRows())
	opts := DefaultParseOptions()
	opts.MaxBytes = 100

	_, err := ParseWorkbook(bytes.NewReader(data), int64(len(data)), opts)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// unknown size is enforced while reading
	_, err = ParseWorkbook(bytes.NewReader(data), -1, opts)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestParseWorkbookNotExcel(t *testing.T) {
	_, err := ParseWorkbook(strings.NewReader("well,date\nA,2024-01-01\n"), -1, DefaultParseOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseWorkbookNamedSheet(t *testing.T) {
	data := testutil.BuildWorkbook(t, testutil.MonitoringRows())
	opts := DefaultParseOptions()
	opts.Sheet = "Missing"

	_, err := ParseWorkbook(bytes.NewReader(data), -1, opts)
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wells.xlsx")
	require.NoError(t, os.WriteFile(path, testutil.BuildWorkbook(t, testutil.MonitoringRows()), 0644))

	ds, err := ParseFile(path, DefaultParseOptions())
	require.NoError(t, err)
	assert.Len(t, ds.Components, 2)

	csvPath := filepath.Join(dir, "wells.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a,b"), 0644))
	_, err = ParseFile(csvPath, DefaultParseOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseFile(filepath.Join(dir, "absent.xlsx"), DefaultParseOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
