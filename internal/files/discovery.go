package files

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"mktrend/internal/config"
	"mktrend/internal/exporter"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Format  string    `json:"format,omitempty"`
}

// Discovery finds workbooks and generated reports. Relative directories are
// resolved against basePath.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbooks lists the analyzable workbooks in dir, oldest first. Office lock
// files (~$name.xlsx) are ignored.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	return d.scan(dir, func(name string) (string, bool) {
		if strings.HasPrefix(name, "~$") {
			return "", false
		}
		return "", slices.Contains(config.SupportedExtensions, strings.ToLower(filepath.Ext(name)))
	})
}

// FindReports lists the trend reports in dir, oldest first. Every file whose
// extension is an export format counts.
func (d *Discovery) FindReports(dir string) ([]FileInfo, error) {
	return d.scan(dir, func(name string) (string, bool) {
		ext := filepath.Ext(name)
		if len(ext) < 2 || strings.HasPrefix(name, "~$") {
			return "", false
		}
		format, err := exporter.ParseFormat(ext)
		if err != nil {
			return "", false
		}
		return string(format), true
	})
}

func (d *Discovery) scan(dir string, match func(name string) (string, bool)) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := match(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Format:  format,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// FilterFilesByDateRange keeps files modified in [start, end). A zero end is open.
func FilterFilesByDateRange(files []FileInfo, start, end time.Time) []FileInfo {
	var filtered []FileInfo
	for _, file := range files {
		if file.ModTime.Before(start) {
			continue
		}
		if !end.IsZero() && !file.ModTime.Before(end) {
			continue
		}
		filtered = append(filtered, file)
	}
	return filtered
}
