package dataprocessing

import (
	"fmt"
	"io"
	"text/tabwriter"

	"mktrend/internal/trend"
	"mktrend/pkg/contracts/domain"
)

// Summarize aggregates trend rows into counts per label
func Summarize(rows []domain.TrendRow) domain.AnalysisSummary {
	summary := domain.AnalysisSummary{
		Total:       len(rows),
		TrendCounts: make(map[string]int),
	}

	wells := make(map[string]struct{})
	components := make(map[string]struct{})
	var confidence float64
	for _, row := range rows {
		wells[row.Well] = struct{}{}
		components[row.Component] = struct{}{}
		summary.TrendCounts[row.Result.Trend.String()]++
		confidence += row.Result.ConfidenceFactor
	}

	summary.Wells = len(wells)
	summary.Components = len(components)
	if len(rows) > 0 {
		summary.AverageConfidence = round(confidence/float64(len(rows)), 4)
	}
	return summary
}

// Distribution lists the non-zero trend counts in label order
func Distribution(summary domain.AnalysisSummary) []domain.TrendCount {
	var out []domain.TrendCount
	for _, t := range trend.AllTrends() {
		if n := summary.TrendCounts[t.String()]; n > 0 {
			out = append(out, domain.TrendCount{Trend: t.String(), Count: n})
		}
	}
	return out
}

// WriteSummary prints a plain-text summary table
func WriteSummary(w io.Writer, summary domain.AnalysisSummary, skipped int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Series analysed:\t%d\n", summary.Total)
	fmt.Fprintf(tw, "Wells:\t%d\n", summary.Wells)
	fmt.Fprintf(tw, "Components:\t%d\n", summary.Components)
	fmt.Fprintf(tw, "Series skipped:\t%d\n", skipped)
	fmt.Fprintf(tw, "Average confidence:\t%.4f\n", summary.AverageConfidence)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Trend\tCount\tShare")
	for _, tc := range Distribution(summary) {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", tc.Trend, tc.Count, 100*float64(tc.Count)/float64(summary.Total))
	}
	return tw.Flush()
}
