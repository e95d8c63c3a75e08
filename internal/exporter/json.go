package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"mktrend/pkg/contracts/domain"
)

// WriteJSON writes v as indented JSON. Rows encode infinite CVs as "Infinity".
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Write encodes rows in the given format
func Write(w io.Writer, format Format, rows []domain.TrendRow) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		if rows == nil {
			rows = []domain.TrendRow{}
		}
		return WriteJSON(w, rows)
	case FormatXLSX, "":
		return WriteExcel(w, rows)
	}
	return fmt.Errorf("unsupported output format %q", format)
}
