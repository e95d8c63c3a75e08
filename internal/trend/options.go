package trend

import (
	"fmt"
	"math"
)

// Default parameters of the test
const (
	DefaultAlpha  = 0.05
	DefaultPeriod = 12
)

// Confidence bands used by Classify
const (
	ProbableConfidence = 0.90
	StrongConfidence   = 0.95
)

// Fixed confidence factors reported for series too short for the normal approximation
const (
	PairConfidence    = 0.5
	TripletConfidence = 0.6
)

// Decimal places applied to the reported values
const (
	statisticDecimals  = 4
	variationDecimals  = 2
	confidenceDecimals = 3
	slopeDecimals      = 6
)

// zeroMeanTolerance is the |mean| below which the coefficient of variation is not a ratio
const zeroMeanTolerance = 1e-10

// Options configures a trend test
type Options struct {
	// Alpha is the significance level. It must lie in (0, 1).
	Alpha float64 `json:"alpha" yaml:"alpha"`
	// Seasonal enables the seasonal Mann-Kendall variant
	Seasonal bool `json:"seasonal" yaml:"seasonal"`
	// Period is the number of seasons per cycle, 12 for monthly data
	Period int `json:"period" yaml:"period"`
	// CalculateSlope adds Sen's slope to the result
	CalculateSlope bool `json:"calculate_slope" yaml:"calculate_slope"`
}

// DefaultOptions returns alpha 0.05, non-seasonal, period 12, with slope
func DefaultOptions() Options {
	return Options{
		Alpha:          DefaultAlpha,
		Period:         DefaultPeriod,
		CalculateSlope: true,
	}
}

// Validate checks the option ranges. Period is only checked for seasonal tests.
func (o Options) Validate() error {
	if math.IsNaN(o.Alpha) || o.Alpha <= 0 || o.Alpha >= 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1), got %v", ErrInvalidInput, o.Alpha)
	}
	if o.Seasonal && o.Period < 1 {
		return fmt.Errorf("%w: period must be at least 1, got %d", ErrInvalidInput, o.Period)
	}
	return nil
}

// Option mutates Options
type Option func(*Options)

// WithAlpha sets the significance level
func WithAlpha(alpha float64) Option {
	return func(o *Options) {
		o.Alpha = alpha
	}
}

// WithSeasonal enables the seasonal test with the given number of seasons per cycle
func WithSeasonal(period int) Option {
	return func(o *Options) {
		o.Seasonal = true
		o.Period = period
	}
}

// WithSlope toggles Sen's slope
func WithSlope(enabled bool) Option {
	return func(o *Options) {
		o.CalculateSlope = enabled
	}
}
