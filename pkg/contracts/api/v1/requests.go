// Package api contains the HTTP contract of mktrend.
// Version v1 represents the current stable API version.
package api

import "mktrend/internal/trend"

// TrendTestRequest asks for a Mann-Kendall test of one series. Unset options fall
// back to the server defaults.
type TrendTestRequest struct {
	Values         []float64 `json:"values" validate:"required,series"`
	Alpha          *float64  `json:"alpha,omitempty" validate:"omitempty,gt=0,lt=1"`
	Seasonal       bool      `json:"seasonal"`
	Period         *int      `json:"period,omitempty" validate:"omitempty,min=1"`
	CalculateSlope *bool     `json:"calculate_slope,omitempty"`
}

// Options merges the request onto defaults
func (r TrendTestRequest) Options(defaults trend.Options) trend.Options {
	return mergeOptions(defaults, r.Alpha, &r.Seasonal, r.Period, r.CalculateSlope)
}

// SlopeRequest asks for Sen's slope of one series
type SlopeRequest struct {
	Values []float64 `json:"values" validate:"required,series"`
}

// AnalysisForm holds the form fields sent alongside an uploaded workbook
type AnalysisForm struct {
	Alpha          *float64 `form:"alpha" validate:"omitempty,gt=0,lt=1"`
	Seasonal       *bool    `form:"seasonal"`
	Period         *int     `form:"period" validate:"omitempty,min=1"`
	CalculateSlope *bool    `form:"calculate_slope"`
	Format         string   `form:"format" validate:"omitempty,oneof=json csv xlsx excel"`
}

// Options merges the form onto defaults
func (f AnalysisForm) Options(defaults trend.Options) trend.Options {
	return mergeOptions(defaults, f.Alpha, f.Seasonal, f.Period, f.CalculateSlope)
}

func mergeOptions(o trend.Options, alpha *float64, seasonal *bool, period *int, slope *bool) trend.Options {
	if alpha != nil {
		o.Alpha = *alpha
	}
	if seasonal != nil {
		o.Seasonal = *seasonal
	}
	if period != nil {
		o.Period = *period
	}
	if slope != nil {
		o.CalculateSlope = *slope
	}
	return o
}
