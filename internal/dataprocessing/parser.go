package dataprocessing

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mktrend/internal/config"
)

// ParseOptions controls how a workbook is read
type ParseOptions struct {
	// Sheet to read; the first sheet when empty
	Sheet            string
	MaxBytes         int64
	NotDetectedValue float64
	Logger           *slog.Logger
}

// DefaultParseOptions returns the options used when nothing is configured
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MaxBytes:         config.DefaultMaxUploadBytes,
		NotDetectedValue: config.DefaultNotDetectedValue,
	}
}

// Sample is one column of the sheet: a well sampled at a date
type Sample struct {
	Well       string
	RawDate    string
	Date       time.Time
	DateParsed bool
	Column     string
}

// Measurement is one component reading of a sample
type Measurement struct {
	Value   float64
	Present bool
}

// Dataset is the content of a monitoring workbook.
// Values is indexed by component, then by sample.
type Dataset struct {
	Sheet      string
	Samples    []Sample
	Components []string
	Values     [][]Measurement
	Warnings   []string
}

// Wells returns the distinct well names in order of first appearance
func (d *Dataset) Wells() []string {
	var wells []string
	seen := make(map[string]bool)
	for _, s := range d.Samples {
		if !seen[s.Well] {
			seen[s.Well] = true
			wells = append(wells, s.Well)
		}
	}
	return wells
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseFile reads a workbook from disk
func ParseFile(path string, opts ParseOptions) (*Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(config.SupportedExtensions, ext) {
		return nil, fmt.Errorf("%w: %q, expected one of %s", ErrUnsupportedFormat, ext,
			strings.Join(config.SupportedExtensions, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ParseWorkbook(f, info.Size(), opts)
}

// ParseWorkbook reads a workbook laid out with samples in columns: row 1 holds well
// names, row 2 sample dates and every following row one component, named in column A.
// size may be -1 when unknown.
func ParseWorkbook(r io.Reader, size int64, opts ParseOptions) (*Dataset, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = config.DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if size > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, size, opts.MaxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, opts.MaxBytes)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	return parseSheet(f, opts)
}

func parseSheet(f *excelize.File, opts ParseOptions) (*Dataset, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidWorkbook)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet %q: %v", ErrInvalidWorkbook, sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet %q needs a row of well names and a row of sample dates",
			ErrInvalidWorkbook, sheet)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width < 2 {
		return nil, fmt.Errorf("%w: sheet %q has no sample columns", ErrInvalidWorkbook, sheet)
	}

	opts.Logger.Debug("Reading workbook sheet",
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)),
		slog.Int("columns", width))

	ds := &Dataset{Sheet: sheet}
	componentRows := rows[2:]

	// Keep only columns that name a well or carry a reading.
	var columns []int
	for c := 1; c < width; c++ {
		well := strings.TrimSpace(cell(rows[0], c))
		used := well != ""
		for _, row := range componentRows {
			if strings.TrimSpace(cell(row, c)) != "" {
				used = true
				break
			}
		}
		if !used {
			continue
		}

		colName, _ := excelize.ColumnNumberToName(c + 1)
		if well == "" {
			return nil, fmt.Errorf("%w: column %s has readings but no well name", ErrInvalidWorkbook, colName)
		}

		raw := strings.TrimSpace(cell(rows[1], c))
		date, ok := parseSampleDate(raw)
		if !ok {
			ds.Warnings = append(ds.Warnings,
				fmt.Sprintf("sample date %q in column %s could not be parsed; column order is kept", raw, colName))
		}

		columns = append(columns, c)
		ds.Samples = append(ds.Samples, Sample{
			Well:       well,
			RawDate:    raw,
			Date:       date,
			DateParsed: ok,
			Column:     colName,
		})
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no sample columns", ErrInvalidWorkbook, sheet)
	}

	invalid := &InvalidValuesError{}
	for i, row := range componentRows {
		name := strings.TrimSpace(cell(row, 0))

		values := make([]Measurement, len(columns))
		hasValues := false
		for j, c := range columns {
			raw := cell(row, c)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			hasValues = true

			axis, _ := excelize.CoordinatesToCellName(c+1, i+3)
			v, present, err := ParseValue(raw, isTextCell(f, sheet, axis), opts.NotDetectedValue)
			if err != nil {
				invalid.add(componentLabel(name, i+3), raw)
				continue
			}
			values[j] = Measurement{Value: v, Present: present}
		}

		if name == "" {
			if hasValues {
				return nil, fmt.Errorf("%w: row %d has readings but no component name", ErrInvalidWorkbook, i+3)
			}
			continue
		}

		ds.Components = append(ds.Components, name)
		ds.Values = append(ds.Values, values)
	}

	if !invalid.empty() {
		return nil, invalid
	}
	if len(ds.Components) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no component rows below the date row", ErrInvalidWorkbook, sheet)
	}

	for _, w := range ds.Warnings {
		opts.Logger.Warn("Workbook warning", slog.String("sheet", sheet), slog.String("warning", w))
	}
	opts.Logger.Info("Workbook parsed",
		slog.String("sheet", sheet),
		slog.Int("samples", len(ds.Samples)),
		slog.Int("wells", len(ds.Wells())),
		slog.Int("components", len(ds.Components)))

	return ds, nil
}

func cell(row []string, c int) string {
	if c < len(row) {
		return row[c]
	}
	return ""
}

func componentLabel(name string, row int) string {
	if name == "" {
		return fmt.Sprintf("row %d", row)
	}
	return name
}

func isTextCell(f *excelize.File, sheet, axis string) bool {
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return true
	}
	return typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString
}

// parseSampleDate accepts an Excel serial number or one of the known layouts
func parseSampleDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
