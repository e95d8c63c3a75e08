package trend

import (
	"fmt"
	"sort"
)

// SensSlope returns the median of (x[j]-x[i])/(j-i) over every pair i<j.
// Index position is the time axis. Tied values contribute zero slopes.
func SensSlope(x []float64) (float64, error) {
	if x == nil {
		return 0, fmt.Errorf("%w: series is nil", ErrInvalidInput)
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: series needs at least 2 values, got %d", ErrInvalidInput, len(x))
	}

	n := len(x)
	slopes := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			slopes = append(slopes, (x[j]-x[i])/float64(j-i))
		}
	}
	return median(slopes), nil
}

// median sorts values in place. Even counts average the two middle values.
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
