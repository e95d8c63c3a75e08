package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// NotDetectedMarkers are the cell texts that stand for a reading below the detection limit.
// Matching is case-insensitive after trimming.
var NotDetectedMarkers = []string{"ND", "N/D", "NOT DETECTED", "<ND"}

const textDecimals = 3

// IsNotDetected reports whether raw is one of the not-detected markers
func IsNotDetected(raw string) bool {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for _, m := range NotDetectedMarkers {
		if s == m {
			return true
		}
	}
	return false
}

// ParseValue converts one measurement cell. Empty cells are reported as not present.
// Not-detected markers become ndValue. Censored readings such as "<0.01" lose the
// prefix. Values typed as text are rounded to three decimals, numeric cells are not.
func ParseValue(raw string, textCell bool, ndValue float64) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	if IsNotDetected(s) {
		return ndValue, true, nil
	}

	censored := strings.HasPrefix(s, "<")
	if censored {
		s = strings.TrimSpace(strings.TrimPrefix(s, "<"))
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &InvalidValueError{Value: raw, Err: ErrInvalidWorkbook}
	}

	if censored || textCell {
		v = round(v, textDecimals)
	}
	return v, true, nil
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
