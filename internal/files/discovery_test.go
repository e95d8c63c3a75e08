package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "q3.xlsx", now.Add(-time.Hour))
	touch(t, dir, "q1.XLSM", now.Add(-3*time.Hour))
	touch(t, dir, "~$q3.xlsx", now)
	touch(t, dir, "notes.csv", now)
	touch(t, dir, "legacy.xls", now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0o755))

	got, err := NewDiscovery("").FindWorkbooks(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1.XLSM", got[0].Name)
	assert.Equal(t, "q3.xlsx", got[1].Name)
	assert.Equal(t, filepath.Join(dir, "q3.xlsx"), got[1].Path)
	assert.EqualValues(t, 1, got[1].Size)
}

func TestFindReportsRelativeToBase(t *testing.T) {
	base := t.TempDir()
	reports := filepath.Join(base, "data", "reports")
	require.NoError(t, os.MkdirAll(reports, 0o755))

	now := time.Now()
	touch(t, reports, "site_2024_01_10_1234.xlsx", now.Add(-2*time.Minute))
	touch(t, reports, "site_2024_01_10_2345.csv", now.Add(-time.Minute))
	touch(t, reports, "site_2024_01_10_3456.json", now)
	touch(t, reports, "README", now)
	touch(t, reports, "site.pdf", now)

	got, err := NewDiscovery(base).FindReports(filepath.Join("data", "reports"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"xlsx", "csv", "json"}, []string{got[0].Format, got[1].Format, got[2].Format})

	latest, ok := GetLatestFile(got)
	require.True(t, ok)
	assert.Equal(t, "site_2024_01_10_3456.json", latest.Name)
}

func TestFindMissingDirectory(t *testing.T) {
	_, err := NewDiscovery("").FindReports(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGetLatestFileEmpty(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)
}

func TestFilterFilesByDateRange(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	files := []FileInfo{
		{Name: "a", ModTime: base.Add(-48 * time.Hour)},
		{Name: "b", ModTime: base},
		{Name: "c", ModTime: base.Add(time.Hour)},
	}

	names := func(fs []FileInfo) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"b", "c"}, names(FilterFilesByDateRange(files, base, time.Time{})))
	assert.Equal(t, []string{"a", "b"}, names(FilterFilesByDateRange(files, time.Time{}, base.Add(time.Hour))))
	assert.Empty(t, FilterFilesByDateRange(files, base.Add(2*time.Hour), time.Time{}))
}
