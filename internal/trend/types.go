package trend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Trend is the classified direction of a series
type Trend int

const (
	// NoTrend means the confidence factor stayed below the probable band
	NoTrend Trend = iota
	// ProbablyIncreasing means 0.90 <= CF <= 0.95 with S > 0
	ProbablyIncreasing
	// ProbablyDecreasing means 0.90 <= CF <= 0.95 with S <= 0
	ProbablyDecreasing
	// Increasing means CF > 0.95 with S > 0
	Increasing
	// Decreasing means CF > 0.95 with S <= 0
	Decreasing
	SeasonalNoTrend
	SeasonalProbablyIncreasing
	SeasonalProbablyDecreasing
	SeasonalIncreasing
	SeasonalDecreasing
)

const seasonalPrefix = "seasonal "

var trendNames = [...]string{
	NoTrend:                    "no trend",
	ProbablyIncreasing:         "probably increasing",
	ProbablyDecreasing:         "probably decreasing",
	Increasing:                 "increasing",
	Decreasing:                 "decreasing",
	SeasonalNoTrend:            seasonalPrefix + "no trend",
	SeasonalProbablyIncreasing: seasonalPrefix + "probably increasing",
	SeasonalProbablyDecreasing: seasonalPrefix + "probably decreasing",
	SeasonalIncreasing:         seasonalPrefix + "increasing",
	SeasonalDecreasing:         seasonalPrefix + "decreasing",
}

// AllTrends lists every label in display order
func AllTrends() []Trend {
	out := make([]Trend, 0, len(trendNames))
	for t := range trendNames {
		out = append(out, Trend(t))
	}
	return out
}

// String returns the label of the trend
func (t Trend) String() string {
	if t < 0 || int(t) >= len(trendNames) {
		return "unknown"
	}
	return trendNames[t]
}

// ParseTrend converts a label back into a Trend. Matching ignores case and surrounding space.
func ParseTrend(s string) (Trend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range trendNames {
		if name == s {
			return Trend(i), nil
		}
	}
	return NoTrend, fmt.Errorf("unknown trend label %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t Trend) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(trendNames) {
		return nil, fmt.Errorf("invalid trend value %d", int(t))
	}
	return []byte(trendNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Trend) UnmarshalText(b []byte) error {
	parsed, err := ParseTrend(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsSeasonal reports whether the label came from the seasonal test
func (t Trend) IsSeasonal() bool {
	return t >= SeasonalNoTrend && int(t) < len(trendNames)
}

// Direction returns 1 for increasing labels, -1 for decreasing labels and 0 otherwise
func (t Trend) Direction() int {
	switch t.base() {
	case Increasing, ProbablyIncreasing:
		return 1
	case Decreasing, ProbablyDecreasing:
		return -1
	default:
		return 0
	}
}

func (t Trend) base() Trend {
	if t.IsSeasonal() {
		return t - SeasonalNoTrend
	}
	return t
}

func (t Trend) seasonal() Trend {
	if t.IsSeasonal() {
		return t
	}
	return t + SeasonalNoTrend
}

// Result holds the outcome of one trend test.
// Statistic, CoefficientOfVariation, ConfidenceFactor and Slope are rounded to 4, 2, 3 and
// 6 decimals. N, Variance, Z and PValue are diagnostics and are left unrounded.
// PValue is always 1 - ConfidenceFactor before rounding: for two or three values it
// comes from the fixed confidence and for identical values it is 1. Variance and Z
// are zero on those paths.
type Result struct {
	Trend                  Trend   `json:"trend"`
	Statistic              float64 `json:"statistic"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	ConfidenceFactor       float64 `json:"confidence_factor"`
	Slope                  float64 `json:"slope"`

	N        int     `json:"n"`
	Variance float64 `json:"variance"`
	Z        float64 `json:"z"`
	PValue   float64 `json:"p_value"`
}

// MarshalJSON encodes an infinite coefficient of variation as "Infinity"
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		CoefficientOfVariation any `json:"coefficient_of_variation"`
	}{
		plain:                  plain(r),
		CoefficientOfVariation: jsonFloat(r.CoefficientOfVariation),
	})
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON
func (r *Result) UnmarshalJSON(b []byte) error {
	type plain Result
	aux := struct {
		*plain
		CoefficientOfVariation json.RawMessage `json:"coefficient_of_variation"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	cv, err := parseJSONFloat(aux.CoefficientOfVariation)
	if err != nil {
		return fmt.Errorf("coefficient_of_variation: %w", err)
	}
	r.CoefficientOfVariation = cv
	return nil
}

func jsonFloat(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	default:
		return v
	}
}

func parseJSONFloat(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] != '"' {
		var v float64
		err := json.Unmarshal(raw, &v)
		return v, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	default:
		return 0, fmt.Errorf("unexpected value %q", s)
	}
}
