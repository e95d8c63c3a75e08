package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// BuildWorkbook writes rows into the first sheet of a new workbook and returns its bytes
func BuildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, axis, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// WriteWorkbook saves rows as name inside a fresh temp directory and returns the path
func WriteWorkbook(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, BuildWorkbook(t, rows), 0o644))
	return path
}

// MonitoringRows is a two-well layout: PM-01 rises over five quarters,
// PM-02 has only two samples. Toluene mixes non-detects and a blank cell.
func MonitoringRows() [][]interface{} {
	return [][]interface{}{
		{"Well", "PM-01", "PM-01", "PM-01", "PM-01", "PM-01", "PM-02", "PM-02"},
		{"Date", "2023-01-10", "2023-04-10", "2023-07-10", "2023-10-10", "2024-01-10", "2023-01-10", "2023-04-10"},
		{"Benzene", 1.0, 2.0, 3.0, 4.0, 5.0, 1.0, 1.5},
		{"Toluene", "ND", "<0.5", "0.75", nil, "1.2", "ND", "ND"},
	}
}
