package http

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/ajg/form"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"mktrend/internal/config"
	apierrors "mktrend/internal/errors"
	"mktrend/internal/exporter"
	"mktrend/internal/middleware"
	api "mktrend/pkg/contracts/api/v1"
)

// multipartOverhead is allowed on top of the workbook size for the form envelope
const multipartOverhead = 64 << 10

// AnalysisHandler accepts monitoring workbooks and returns their trend report
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	maxUpload    int64
	logger       *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler. maxUpload bounds the workbook size.
func NewAnalysisHandler(service AnalysisServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, maxUpload int64, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadBytes
	}
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes, mounted under /api/analysis
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.Analyze)
	return r
}

// Analyze handles POST /api/analysis. The workbook is sent in the multipart field
// "file"; alpha, seasonal, period, calculate_slope and format are optional form fields.
// format json (default) answers with the report, csv and xlsx with a download.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload + multipartOverhead); err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields, err := parseAnalysisForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(fields); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := exporter.FormatJSON
	if fields.Format != "" {
		if format, err = exporter.ParseFormat(fields.Format); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("format", fields.Format))
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		h.errorHandler.HandleError(w, r, apierrors.PayloadTooLarge("Workbook exceeds maximum allowed size",
			header.Size, h.maxUpload))
		return
	}

	h.logger.InfoContext(ctx, "Workbook received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("format", string(format)))

	report, err := h.service.AnalyzeWorkbook(ctx, file, header.Size, header.Filename,
		fields.Options(h.service.DefaultOptions()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("X-Analysis-ID", report.ID)

	if format == exporter.FormatJSON {
		render.JSON(w, r, report)
		return
	}

	name := exporter.OutputFilename(header.Filename, time.Now(), nil) + format.Extension()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := exporter.Write(w, format, report.Rows); err != nil {
		// headers are already sent
		h.logger.ErrorContext(ctx, "Failed to write report",
			slog.String("analysis_id", report.ID),
			slog.String("error", err.Error()))
	}
}

var formDecoder = func() *form.Decoder {
	d := form.NewDecoder(nil)
	// the upload itself and any extra fields are not part of the options
	d.IgnoreUnknownKeys(true)
	return d
}()

// parseAnalysisForm decodes the optional form fields; empty values are left unset.
// Fields that do not parse are reported together.
func parseAnalysisForm(r *http.Request) (api.AnalysisForm, error) {
	var f api.AnalysisForm
	var invalid []apierrors.ValidationError

	for _, key := range slices.Sorted(maps.Keys(r.MultipartForm.Value)) {
		v := strings.TrimSpace(r.MultipartForm.Value[key][0])
		if v == "" {
			continue
		}
		if err := formDecoder.DecodeValues(&f, url.Values{key: {v}}); err != nil {
			invalid = append(invalid, apierrors.ValidationError{
				Field:   key,
				Message: fmt.Sprintf("%s cannot be %q", key, v),
			})
		}
	}
	if len(invalid) > 0 {
		return f, apierrors.NewValidationErrors(invalid)
	}

	f.Format = strings.ToLower(f.Format)
	return f, nil
}

// uploadError keeps size violations for the error handler and reports the rest as bad requests
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return apierrors.InvalidRequestWithError(err)
}
