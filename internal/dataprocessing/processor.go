package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"mktrend/internal/config"
	"mktrend/internal/trend"
	"mktrend/pkg/contracts/domain"
)

// Series is the ordered readings of one component at one well
type Series struct {
	Well      string
	Component string
	Dates     []time.Time
	Values    []float64
}

// ProgressFunc is called after each series of a batch completes
type ProgressFunc func(completed, total int, s Series)

// ProcessorConfig configures a Processor
type ProcessorConfig struct {
	Options                trend.Options
	MinSamplesPerWell      int
	MinSamplesPerComponent int
	MaxSeriesLength        int
	Workers                int
	// Cache is shared between batches; nil runs every test uncached
	Cache  *trend.Cache
	Logger *slog.Logger
}

// Processor turns a dataset into series and runs the trend test over them
type Processor struct {
	opts            trend.Options
	minPerWell      int
	minPerComponent int
	maxLength       int
	workers         int
	cache           *trend.Cache
	logger          *slog.Logger
}

// NewProcessor creates a processor, filling unset limits with defaults
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.MinSamplesPerWell <= 0 {
		cfg.MinSamplesPerWell = config.DefaultMinSamplesPerWell
	}
	if cfg.MinSamplesPerComponent <= 0 {
		cfg.MinSamplesPerComponent = config.DefaultMinSamplesPerComponent
	}
	if cfg.MaxSeriesLength <= 0 {
		cfg.MaxSeriesLength = config.DefaultMaxSeriesLength
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Options == (trend.Options{}) {
		cfg.Options = trend.DefaultOptions()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Processor{
		opts:            cfg.Options,
		minPerWell:      cfg.MinSamplesPerWell,
		minPerComponent: cfg.MinSamplesPerComponent,
		maxLength:       cfg.MaxSeriesLength,
		workers:         cfg.Workers,
		cache:           cfg.Cache,
		logger:          cfg.Logger.With(slog.String("component", "processor")),
	}
}

// Options returns the trend options the processor runs with
func (p *Processor) Options() trend.Options {
	return p.opts
}

// BuildSeries groups the dataset by well and component. Wells with too few samples,
// components with too few or too many readings and series averaging exactly zero are
// reported as skipped instead.
func (p *Processor) BuildSeries(ds *Dataset) ([]Series, []domain.SkippedSeries) {
	var (
		series  []Series
		skipped []domain.SkippedSeries
	)

	byWell := make(map[string][]int)
	for i, s := range ds.Samples {
		byWell[s.Well] = append(byWell[s.Well], i)
	}

	for _, well := range ds.Wells() {
		cols := byWell[well]
		if len(cols) < p.minPerWell {
			skipped = append(skipped, domain.SkippedSeries{
				Well:   well,
				Reason: domain.SkipTooFewSamples,
				Detail: fmt.Sprintf("%d samples, at least %d required", len(cols), p.minPerWell),
			})
			continue
		}
		if allDated(ds.Samples, cols) {
			sort.SliceStable(cols, func(a, b int) bool {
				return ds.Samples[cols[a]].Date.Before(ds.Samples[cols[b]].Date)
			})
		}

		for ci, component := range ds.Components {
			s := Series{Well: well, Component: component}
			for _, col := range cols {
				m := ds.Values[ci][col]
				if !m.Present {
					continue
				}
				s.Values = append(s.Values, m.Value)
				s.Dates = append(s.Dates, ds.Samples[col].Date)
			}

			switch {
			case len(s.Values) < p.minPerComponent:
				skipped = append(skipped, domain.SkippedSeries{
					Well:      well,
					Component: component,
					Reason:    domain.SkipTooFewValues,
					Detail:    fmt.Sprintf("%d readings, at least %d required", len(s.Values), p.minPerComponent),
				})
			case len(s.Values) > p.maxLength:
				skipped = append(skipped, domain.SkippedSeries{
					Well:      well,
					Component: component,
					Reason:    domain.SkipTooManyValues,
					Detail:    fmt.Sprintf("%d readings, at most %d accepted", len(s.Values), p.maxLength),
				})
			case stat.Mean(s.Values, nil) == 0:
				skipped = append(skipped, domain.SkippedSeries{
					Well:      well,
					Component: component,
					Reason:    domain.SkipZeroMean,
					Detail:    "all readings are zero",
				})
			default:
				series = append(series, s)
			}
		}
	}

	return series, skipped
}

func allDated(samples []Sample, cols []int) bool {
	for _, c := range cols {
		if !samples[c].DateParsed {
			return false
		}
	}
	return true
}

// Run tests every series concurrently. Rows keep the order of the input. Series the
// test rejects are reported as skipped; any other error or a cancelled context aborts
// the batch.
func (p *Processor) Run(ctx context.Context, series []Series, progress ProgressFunc) ([]domain.TrendRow, []domain.SkippedSeries, error) {
	results := make([]*trend.Result, len(series))
	failures := make([]error, len(series))

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range series {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			s := series[i]
			res, err := p.test(s.Values)
			switch {
			case errors.Is(err, trend.ErrInvalidInput), errors.Is(err, trend.ErrInsufficientData):
				failures[i] = err
			case err != nil:
				return fmt.Errorf("well %s, component %s: %w", s.Well, s.Component, err)
			default:
				results[i] = &res
			}

			n := completed.Add(1)
			if progress != nil {
				progress(int(n), len(series), s)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rows := make([]domain.TrendRow, 0, len(series))
	var skipped []domain.SkippedSeries
	for i, s := range series {
		if results[i] != nil {
			rows = append(rows, domain.TrendRow{Well: s.Well, Component: s.Component, Result: *results[i]})
			continue
		}

		reason := domain.SkipInvalidInput
		if errors.Is(failures[i], trend.ErrInsufficientData) {
			reason = domain.SkipInsufficientData
		}
		p.logger.Debug("Series rejected by trend test",
			slog.String("well", s.Well),
			slog.String("series", s.Component),
			slog.String("error", failures[i].Error()))
		skipped = append(skipped, domain.SkippedSeries{
			Well:      s.Well,
			Component: s.Component,
			Reason:    reason,
			Detail:    failures[i].Error(),
		})
	}

	return rows, skipped, nil
}

func (p *Processor) test(values []float64) (trend.Result, error) {
	if p.cache != nil {
		return p.cache.Test(values, p.opts)
	}
	return trend.TestWithOptions(values, p.opts)
}

// CheckDataSufficiency reports whether the workbook has enough sample columns for a
// trend test. A workbook that passes with fewer than the recommended samples gets a
// warning.
func CheckDataSufficiency(ds *Dataset) (bool, string) {
	n := len(ds.Samples)
	switch {
	case n < config.DefaultMinSamplesPerComponent:
		return false, fmt.Sprintf("only %d samples found, at least %d are required for a trend test",
			n, config.DefaultMinSamplesPerComponent)
	case n < config.MinPointsForReliableTest:
		return true, fmt.Sprintf("only %d samples found, %d or more are recommended for a reliable trend test",
			n, config.MinPointsForReliableTest)
	default:
		return true, ""
	}
}
