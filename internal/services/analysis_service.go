package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mktrend/internal/config"
	"mktrend/internal/dataprocessing"
	apperrors "mktrend/internal/errors"
	"mktrend/internal/infrastructure"
	"mktrend/internal/trend"
	"mktrend/pkg/contracts/domain"
	"mktrend/pkg/contracts/events"
)

// Broadcaster delivers analysis events to connected clients
type Broadcaster interface {
	BroadcastWithTrace(messageType events.MessageType, data interface{}, traceID string)
}

// AnalysisDeps holds the optional collaborators of an AnalysisService
type AnalysisDeps struct {
	// Cache is shared by every request; a new cache sized from the config is used when nil
	Cache   *trend.Cache
	Hub     Broadcaster
	Metrics *infrastructure.AnalysisMetrics
	Tracer  trace.Tracer
	Logger  *slog.Logger
}

// AnalysisService runs trend tests on single series and on monitoring workbooks
type AnalysisService struct {
	cfg     config.AnalysisConfig
	cache   *trend.Cache
	hub     Broadcaster
	metrics *infrastructure.AnalysisMetrics
	tracer  trace.Tracer
	logger  *slog.Logger

	// cache counters already reported to metrics
	statsMu   sync.Mutex
	lastStats trend.CacheStats
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(cfg config.AnalysisConfig, deps AnalysisDeps) *AnalysisService {
	if deps.Logger == nil {
		deps.Logger = infrastructure.GetLogger()
	}
	if deps.Cache == nil {
		deps.Cache = trend.NewCache(cfg.CacheSize)
	}
	if deps.Metrics == nil {
		deps.Metrics = infrastructure.NoopAnalysisMetrics()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer(infrastructure.InstrumentationName)
	}

	deps.Logger.Info("AnalysisService initialized",
		slog.Int("workers", cfg.Workers),
		slog.Int("cache_size", deps.Cache.Stats().Capacity),
		slog.Bool("progress_events", deps.Hub != nil))

	return &AnalysisService{
		cfg:     cfg,
		cache:   deps.Cache,
		hub:     deps.Hub,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		logger:  deps.Logger.With(slog.String("service", "analysis")),
	}
}

// DefaultOptions returns the configured trend options
func (s *AnalysisService) DefaultOptions() trend.Options {
	return s.cfg.TrendOptions()
}

// Test runs the Mann-Kendall test on one series through the shared cache
func (s *AnalysisService) Test(ctx context.Context, values []float64, opts trend.Options) (trend.Result, error) {
	ctx, span := s.tracer.Start(ctx, "trend.test", trace.WithAttributes(
		attribute.Int("series.length", len(values)),
		attribute.Bool("trend.seasonal", opts.Seasonal),
	))
	defer span.End()

	if err := s.checkLength(values); err != nil {
		s.metrics.RecordTrendError(ctx, errorReason(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return trend.Result{}, err
	}

	res, err := s.cache.Test(values, opts)
	s.recordCacheDelta(ctx)
	if err != nil {
		s.metrics.RecordTrendError(ctx, errorReason(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return trend.Result{}, err
	}

	s.metrics.RecordTrendTest(ctx, res.Trend.String())
	infrastructure.ContextLogger(ctx, s.logger).Debug("Trend test completed",
		slog.Int("n", len(values)),
		slog.String("trend", res.Trend.String()),
		slog.Float64("confidence_factor", res.ConfidenceFactor))
	return res, nil
}

// Slope returns Sen's slope of one series
func (s *AnalysisService) Slope(ctx context.Context, values []float64) (float64, error) {
	_, span := s.tracer.Start(ctx, "trend.slope", trace.WithAttributes(
		attribute.Int("series.length", len(values)),
	))
	defer span.End()

	if err := s.checkLength(values); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	slope, err := trend.SensSlope(values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return slope, nil
}

// MaxSeriesLength is the longest series Test and Slope accept
func (s *AnalysisService) MaxSeriesLength() int {
	if s.cfg.MaxSeriesLength <= 0 {
		return config.DefaultMaxSeriesLength
	}
	return s.cfg.MaxSeriesLength
}

func (s *AnalysisService) checkLength(values []float64) error {
	if limit := s.MaxSeriesLength(); len(values) > limit {
		return fmt.Errorf("%w: series has %d values, at most %d are accepted",
			trend.ErrInvalidInput, len(values), limit)
	}
	return nil
}

// AnalyzeWorkbook parses an uploaded workbook and tests every qualifying well and
// component series. size may be -1 when unknown.
func (s *AnalysisService) AnalyzeWorkbook(ctx context.Context, r io.Reader, size int64, name string, opts trend.Options) (*domain.AnalysisReport, error) {
	return s.analyze(ctx, name, opts, func(po dataprocessing.ParseOptions) (*dataprocessing.Dataset, error) {
		return dataprocessing.ParseWorkbook(r, size, po)
	})
}

// AnalyzeFile is AnalyzeWorkbook for a workbook on disk
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, opts trend.Options) (*domain.AnalysisReport, error) {
	return s.analyze(ctx, filepath.Base(path), opts, func(po dataprocessing.ParseOptions) (*dataprocessing.Dataset, error) {
		return dataprocessing.ParseFile(path, po)
	})
}

type parseFunc func(dataprocessing.ParseOptions) (*dataprocessing.Dataset, error)

func (s *AnalysisService) analyze(ctx context.Context, name string, opts trend.Options, parse parseFunc) (*domain.AnalysisReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	report := &domain.AnalysisReport{
		ID:        uuid.New().String(),
		Source:    name,
		Options:   opts,
		StartedAt: time.Now().UTC(),
	}

	ctx, span := s.tracer.Start(ctx, "analysis.workbook", trace.WithAttributes(
		attribute.String("analysis.id", report.ID),
		attribute.String("analysis.source", name),
	))
	defer span.End()

	traceID := infrastructure.GetTraceID(ctx)
	logger := infrastructure.ContextLogger(ctx, s.logger).With(slog.String("analysis_id", report.ID))

	fail := func(err error) (*domain.AnalysisReport, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("Workbook analysis failed",
			slog.String("source", name),
			slog.String("error", err.Error()))
		s.broadcast(events.MessageTypeAnalysisError, events.AnalysisError{
			AnalysisID: report.ID,
			Source:     name,
			Error:      err.Error(),
		}, traceID)
		return nil, err
	}

	ds, err := parse(dataprocessing.ParseOptions{
		MaxBytes:         s.cfg.MaxUploadBytes,
		NotDetectedValue: s.cfg.NotDetectedValue,
		Logger:           logger,
	})
	if err != nil {
		return fail(parseError(name, err))
	}
	report.Sheet = ds.Sheet
	report.Warnings = append(report.Warnings, ds.Warnings...)
	s.metrics.RecordUpload(ctx, filepath.Ext(name))

	ok, warning := dataprocessing.CheckDataSufficiency(ds)
	if !ok {
		return fail(apperrors.NewAnalysisError(warning, ErrInsufficientSamples))
	}
	if warning != "" {
		report.Warnings = append(report.Warnings, warning)
	}

	processor := dataprocessing.NewProcessor(dataprocessing.ProcessorConfig{
		Options:                opts,
		MinSamplesPerWell:      s.cfg.MinSamplesPerWell,
		MinSamplesPerComponent: s.cfg.MinSamplesPerComponent,
		MaxSeriesLength:        s.MaxSeriesLength(),
		Workers:                s.cfg.Workers,
		Cache:                  s.cache,
		Logger:                 logger,
	})

	series, skipped := processor.BuildSeries(ds)
	for _, sk := range skipped {
		s.metrics.RecordSkipped(ctx, sk.Reason)
	}
	if len(series) == 0 {
		return fail(apperrors.NewAnalysisError(
			fmt.Sprintf("%d wells and %d components read, none has enough readings", len(ds.Wells()), len(ds.Components)),
			ErrNoSeries,
		).WithContext("skipped", len(skipped)))
	}

	logger.Info("Running trend tests",
		slog.String("source", name),
		slog.String("sheet", ds.Sheet),
		slog.Int("series", len(series)),
		slog.Int("skipped", len(skipped)))

	started := time.Now()
	rows, rejected, err := processor.Run(ctx, series, func(completed, total int, sr dataprocessing.Series) {
		s.broadcast(events.MessageTypeAnalysisProgress, events.AnalysisProgress{
			AnalysisID: report.ID,
			Well:       sr.Well,
			Component:  sr.Component,
			Completed:  completed,
			Total:      total,
		}, traceID)
	})
	s.recordCacheDelta(ctx)
	if err != nil {
		return fail(err)
	}
	duration := time.Since(started)

	for _, row := range rows {
		s.metrics.RecordTrendTest(ctx, row.Result.Trend.String())
	}
	for _, sk := range rejected {
		s.metrics.RecordTrendError(ctx, sk.Reason)
		s.metrics.RecordSkipped(ctx, sk.Reason)
	}
	s.metrics.RecordBatch(ctx, len(series), duration, "workbook")

	report.Rows = rows
	report.Skipped = append(skipped, rejected...)
	report.Summary = dataprocessing.Summarize(rows)
	report.FinishedAt = time.Now().UTC()

	span.SetAttributes(
		attribute.Int("analysis.rows", len(rows)),
		attribute.Int("analysis.skipped", len(report.Skipped)),
	)
	logger.Info("Workbook analysis completed",
		slog.String("source", name),
		slog.Int("rows", len(rows)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Duration("duration", duration))

	s.broadcast(events.MessageTypeAnalysisComplete, events.AnalysisComplete{
		AnalysisID: report.ID,
		Source:     name,
		Rows:       len(rows),
		Skipped:    len(report.Skipped),
		DurationMS: report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	}, traceID)

	return report, nil
}

// CacheStats reports the shared result cache usage
func (s *AnalysisService) CacheStats() trend.CacheStats {
	return s.cache.Stats()
}

// ClearCache drops every cached result
func (s *AnalysisService) ClearCache(ctx context.Context) {
	s.recordCacheDelta(ctx)
	s.cache.Clear()

	s.statsMu.Lock()
	s.lastStats = s.cache.Stats()
	s.statsMu.Unlock()

	infrastructure.ContextLogger(ctx, s.logger).Info("Trend cache cleared")
}

func (s *AnalysisService) broadcast(messageType events.MessageType, data interface{}, traceID string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastWithTrace(messageType, data, traceID)
}

// recordCacheDelta forwards the hits and misses since the previous call to metrics
func (s *AnalysisService) recordCacheDelta(ctx context.Context) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	current := s.cache.Stats()
	var hits, misses uint64
	if current.Hits >= s.lastStats.Hits {
		hits = current.Hits - s.lastStats.Hits
	}
	if current.Misses >= s.lastStats.Misses {
		misses = current.Misses - s.lastStats.Misses
	}
	s.lastStats = current
	s.metrics.RecordCacheDelta(ctx, hits, misses)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, trend.ErrInsufficientData):
		return domain.SkipInsufficientData
	case errors.Is(err, trend.ErrInvalidInput):
		return domain.SkipInvalidInput
	default:
		return "internal"
	}
}

// parseError keeps workbook rejections matchable and classifies the rest for the error handler
func parseError(name string, err error) error {
	switch {
	case errors.Is(err, dataprocessing.ErrInvalidWorkbook),
		errors.Is(err, dataprocessing.ErrUnsupportedFormat),
		errors.Is(err, dataprocessing.ErrFileTooLarge):
		return fmt.Errorf("%s: %w", name, err)
	case errors.Is(err, fs.ErrNotExist):
		return apperrors.NewNotFoundError(fmt.Sprintf("workbook %s does not exist", name)).
			WithContext("source", name)
	default:
		return apperrors.NewParsingError("cannot read workbook "+name, err)
	}
}
