// Package services implements the business logic layer of mktrend.
// Handlers and the command line both go through these services, so the trend
// test, workbook analysis, metrics and progress events behave the same whichever
// surface started them.
//
// # Available Services
//
//   - AnalysisService: single-series trend tests, Sen's slope and workbook analysis
//   - HealthService: liveness, readiness and version reporting
//
// # Common Service Pattern
//
//	svc := services.NewAnalysisService(cfg.Analysis, services.AnalysisDeps{
//	    Hub:     hub,
//	    Metrics: metrics,
//	    Tracer:  providers.Tracer,
//	    Logger:  logger,
//	})
//
//	report, err := svc.AnalyzeWorkbook(ctx, file, header.Size, header.Filename, opts)
//	if err != nil {
//	    // errors carry the trend and dataprocessing sentinels, or an AppError
//	    // of type ANALYSIS when the workbook cannot be analysed
//	}
//
// # Error Handling
//
// Services return errors that internal/errors maps onto problem responses:
//
//   - trend.ErrInvalidInput for malformed series or options
//   - dataprocessing workbook errors for unreadable uploads
//   - AppError{Type: ANALYSIS} wrapping ErrInsufficientSamples or ErrNoSeries
//
// # Testing
//
// Services are tested with a nil hub and no-op metrics; the hub is an interface so
// tests can capture broadcast events.
package services
