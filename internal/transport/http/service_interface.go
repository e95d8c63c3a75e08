package http

import (
	"context"
	"io"

	"mktrend/internal/services"
	"mktrend/internal/trend"
	"mktrend/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the trend operations the handlers need
type AnalysisServiceInterface interface {
	DefaultOptions() trend.Options
	Test(ctx context.Context, values []float64, opts trend.Options) (trend.Result, error)
	Slope(ctx context.Context, values []float64) (float64, error)
	AnalyzeWorkbook(ctx context.Context, r io.Reader, size int64, name string, opts trend.Options) (*domain.AnalysisReport, error)
	CacheStats() trend.CacheStats
	ClearCache(ctx context.Context)
}

// HealthServiceInterface defines the health operations the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ AnalysisServiceInterface = (*services.AnalysisService)(nil)
	_ HealthServiceInterface   = (*services.HealthService)(nil)
)
