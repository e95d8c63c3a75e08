package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"mktrend/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes rows as CSV prefixed with a UTF-8 BOM
func WriteCSV(w io.Writer, rows []domain.TrendRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func record(row domain.TrendRow) []string {
	r := row.Result
	return []string{
		row.Well,
		row.Component,
		r.Trend.String(),
		formatFloat(r.Statistic),
		formatFloat(r.CoefficientOfVariation),
		formatFloat(r.ConfidenceFactor),
		formatFloat(r.Slope),
	}
}
