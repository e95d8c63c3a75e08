package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AnalysisMetrics holds the application metrics
type AnalysisMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Trend test metrics
	TrendTestsTotal  metric.Int64Counter
	TrendTestErrors  metric.Int64Counter
	CacheHits        metric.Int64Counter
	CacheMisses      metric.Int64Counter
	SeriesSkipped    metric.Int64Counter
	WorkbookUploads  metric.Int64Counter
	BatchDuration    metric.Float64Histogram
	BatchSeriesCount metric.Int64Histogram
}

// NoopAnalysisMetrics returns metrics that record nothing
func NoopAnalysisMetrics() *AnalysisMetrics {
	m, _ := CreateAnalysisMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
	return m
}

// CreateAnalysisMetrics creates application-specific metrics
func CreateAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	var (
		m   AnalysisMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests"},
		{&m.TrendTestsTotal, "trend_tests_total", "Total number of completed trend tests by label"},
		{&m.TrendTestErrors, "trend_test_errors_total", "Total number of rejected trend tests by reason"},
		{&m.CacheHits, "trend_cache_hits_total", "Total number of trend result cache hits"},
		{&m.CacheMisses, "trend_cache_misses_total", "Total number of trend result cache misses"},
		{&m.SeriesSkipped, "series_skipped_total", "Total number of well/component series skipped by reason"},
		{&m.WorkbookUploads, "workbook_uploads_total", "Total number of analysed workbooks"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.BatchDuration, err = meter.Float64Histogram(
		"trend_batch_duration_seconds",
		metric.WithDescription("Duration of a batch of trend tests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.BatchSeriesCount, err = meter.Int64Histogram(
		"trend_batch_series",
		metric.WithDescription("Number of series in a batch of trend tests"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordTrendTest counts a completed test under its label
func (m *AnalysisMetrics) RecordTrendTest(ctx context.Context, label string) {
	if m == nil {
		return
	}
	m.TrendTestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("trend", label)))
}

// RecordTrendError counts a rejected test
func (m *AnalysisMetrics) RecordTrendError(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.TrendTestErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordCacheDelta adds the hit and miss counts observed since the previous call
func (m *AnalysisMetrics) RecordCacheDelta(ctx context.Context, hits, misses uint64) {
	if m == nil {
		return
	}
	if hits > 0 {
		m.CacheHits.Add(ctx, int64(hits))
	}
	if misses > 0 {
		m.CacheMisses.Add(ctx, int64(misses))
	}
}

// RecordSkipped counts a series excluded from analysis
func (m *AnalysisMetrics) RecordSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.SeriesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordBatch records the size and duration of a batch run
func (m *AnalysisMetrics) RecordBatch(ctx context.Context, series int, duration time.Duration, source string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.BatchDuration.Record(ctx, duration.Seconds(), attrs)
	m.BatchSeriesCount.Record(ctx, int64(series), attrs)
}

// RecordUpload counts an analysed workbook
func (m *AnalysisMetrics) RecordUpload(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.WorkbookUploads.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordHTTPRequest records a finished HTTP request
func (m *AnalysisMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
