package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify straddles both confidence boundaries
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		cf   float64
		s    float64
		want Trend
	}{
		{"just below probable", 0.899999, 5, NoTrend},
		{"exactly probable", 0.90, 5, ProbablyIncreasing},
		{"exactly probable negative", 0.90, -5, ProbablyDecreasing},
		{"just above probable", 0.900001, 5, ProbablyIncreasing},
		{"just above probable negative", 0.900001, -5, ProbablyDecreasing},
		{"just below strong", 0.949999, 5, ProbablyIncreasing},
		{"exactly strong stays probable", 0.95, 5, ProbablyIncreasing},
		{"exactly strong negative", 0.95, -5, ProbablyDecreasing},
		{"just above strong", 0.950001, 5, Increasing},
		{"just above strong negative", 0.950001, -5, Decreasing},
		{"certain", 1.0, 40, Increasing},
		{"zero confidence", 0, 0, NoTrend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.cf, tt.s))
		})
	}
}

func TestClassifySeasonal(t *testing.T) {
	assert.Equal(t, SeasonalNoTrend, ClassifySeasonal(0.5, 3))
	assert.Equal(t, SeasonalProbablyDecreasing, ClassifySeasonal(0.92, -3))
	assert.Equal(t, SeasonalIncreasing, ClassifySeasonal(0.99, 3))
}
