package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "mktrend/internal/errors"
	"mktrend/internal/middleware"
	api "mktrend/pkg/contracts/api/v1"
)

// TrendHandler exposes the single-series trend test, Sen's slope and the result cache
type TrendHandler struct {
	service      AnalysisServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(service AnalysisServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *TrendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrendHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "trend_handler")),
	}
}

// Routes returns the trend routes, mounted under /api/trend
func (h *TrendHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Group(func(r chi.Router) {
		r.Post("/test", h.Test)
		r.Post("/slope", h.Slope)
	})

	r.Get("/cache", h.CacheStats)
	r.Delete("/cache", h.ClearCache)
	return r
}

// Test handles POST /api/trend/test
func (h *TrendHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req api.TrendTestRequest
	if err := h.validator.DecodeAndValidate(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	opts := req.Options(h.service.DefaultOptions())
	if err := opts.Validate(); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Test(r.Context(), req.Values, opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.TrendResponse{Result: result, Options: opts})
}

// Slope handles POST /api/trend/slope
func (h *TrendHandler) Slope(w http.ResponseWriter, r *http.Request) {
	var req api.SlopeRequest
	if err := h.validator.DecodeAndValidate(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	slope, err := h.service.Slope(r.Context(), req.Values)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.SlopeResponse{Slope: slope, N: len(req.Values)})
}

// CacheStats handles GET /api/trend/cache
func (h *TrendHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.CacheResponse{Cache: h.service.CacheStats()})
}

// ClearCache handles DELETE /api/trend/cache
func (h *TrendHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache(r.Context())
	h.logger.InfoContext(r.Context(), "Trend cache cleared over HTTP",
		slog.String("remote_addr", r.RemoteAddr))

	render.JSON(w, r, api.CacheResponse{Cache: h.service.CacheStats(), Cleared: true})
}
