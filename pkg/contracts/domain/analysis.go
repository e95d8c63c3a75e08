package domain

import (
	"time"

	"mktrend/internal/trend"
)

// Reasons a well or component series is left out of a workbook analysis
const (
	SkipTooFewSamples    = "too_few_samples"
	SkipTooFewValues     = "too_few_values"
	SkipTooManyValues    = "too_many_values"
	SkipZeroMean         = "zero_mean"
	SkipInvalidInput     = "invalid_input"
	SkipInsufficientData = "insufficient_data"
)

// TrendRow is the trend test outcome of one component at one well
type TrendRow struct {
	Well      string       `json:"well"`
	Component string       `json:"component"`
	Result    trend.Result `json:"result"`
}

// SkippedSeries records a series that produced no row. Component is empty when the
// whole well was skipped.
type SkippedSeries struct {
	Well      string `json:"well"`
	Component string `json:"component,omitempty"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}

// TrendCount is one entry of an ordered trend distribution
type TrendCount struct {
	Trend string `json:"trend"`
	Count int    `json:"count"`
}

// AnalysisSummary aggregates the rows of one analysis
type AnalysisSummary struct {
	Total             int            `json:"total"`
	Wells             int            `json:"wells"`
	Components        int            `json:"components"`
	TrendCounts       map[string]int `json:"trend_counts"`
	AverageConfidence float64        `json:"average_confidence"`
}

// AnalysisReport is the complete outcome of analysing a workbook
type AnalysisReport struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Sheet      string          `json:"sheet"`
	Options    trend.Options   `json:"options"`
	Rows       []TrendRow      `json:"rows"`
	Skipped    []SkippedSeries `json:"skipped,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
	Summary    AnalysisSummary `json:"summary"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}
