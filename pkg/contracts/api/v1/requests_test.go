package api

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mktrend/internal/trend"
)

func TestTrendTestRequestOptions(t *testing.T) {
	defaults := trend.DefaultOptions()

	assert.Equal(t, defaults, TrendTestRequest{}.Options(defaults))

	alpha, period, slope := 0.1, 4, false
	got := TrendTestRequest{Alpha: &alpha, Seasonal: true, Period: &period, CalculateSlope: &slope}.Options(defaults)
	assert.Equal(t, trend.Options{Alpha: 0.1, Seasonal: true, Period: 4, CalculateSlope: false}, got)
}

func TestAnalysisFormOptions(t *testing.T) {
	defaults := trend.DefaultOptions()
	defaults.Seasonal = true

	// an explicit false overrides a seasonal default
	seasonal := false
	got := AnalysisForm{Seasonal: &seasonal}.Options(defaults)
	assert.False(t, got.Seasonal)
	assert.Equal(t, defaults.Alpha, got.Alpha)
}
