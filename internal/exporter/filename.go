package exporter

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mktrend/internal/config"
	apperrors "mktrend/internal/errors"
	"mktrend/pkg/contracts/domain"
)

const (
	suffixMin = 1000
	suffixMax = 5000
)

// OutputFilename derives a report name from the uploaded file name:
// <base>_YYYY_MM_DD_<n> with n in [1000, 5000]. A nil rnd uses the global source.
func OutputFilename(original string, now time.Time, rnd *rand.Rand) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "mann_kendall"
	}

	var n int
	if rnd != nil {
		n = rnd.IntN(suffixMax-suffixMin+1) + suffixMin
	} else {
		n = rand.IntN(suffixMax-suffixMin+1) + suffixMin
	}
	return fmt.Sprintf("%s_%s_%d", base, now.Format("2006_01_02"), n)
}

// FileWriter stores reports under the reports directory
type FileWriter struct {
	paths *config.Paths
	now   func() time.Time
}

// NewFileWriter creates a writer rooted at paths.ReportsDir
func NewFileWriter(paths *config.Paths) *FileWriter {
	return &FileWriter{paths: paths, now: time.Now}
}

// WriteReport writes rows to a new file named after original and returns its path
func (fw *FileWriter) WriteReport(original string, format Format, rows []domain.TrendRow) (string, error) {
	name := OutputFilename(original, fw.now(), nil) + format.Extension()
	path := fw.paths.GetReportPath(name)
	if err := WriteFile(path, format, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes rows to path, creating parent directories
func WriteFile(path string, format Format, rows []domain.TrendRow) error {
	slog.Info("Writing report",
		slog.String("file_path", path),
		slog.String("format", string(format)),
		slog.Int("record_count", len(rows)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err).
			WithContext("path", filepath.Dir(path))
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create report file", err).
			WithContext("path", path)
	}

	if err := Write(file, format, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
