package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktrend/internal/config"
	apierrors "mktrend/internal/errors"
	"mktrend/internal/infrastructure"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	var seen, traceID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
		traceID = infrastructure.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, traceID)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, quietLogger())
	h := RequestID(rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeRateLimit, body["type"])
	assert.NotEmpty(t, body["trace_id"])
}

func TestTimeout(t *testing.T) {
	var deadline bool
	h := Timeout(50*time.Millisecond, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
		<-r.Context().Done()
		assert.True(t, errors.Is(r.Context().Err(), context.DeadlineExceeded))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, deadline)
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://app.example"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/trend/test", nil)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("X-Frame-Options"))
}

func TestOTelMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewOTelMiddleware(nil, nil, quietLogger())

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items/42", nil)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rctx := chi.NewRouteContext()
	rctx.RoutePatterns = []string{"/api/items/{id}"}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	assert.Equal(t, "/api/items/{id}", routePattern(req))

	assert.Equal(t, "unmatched", routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

type sampleRequest struct {
	Values []float64 `json:"values" validate:"required"`
	Alpha  *float64  `json:"alpha,omitempty" validate:"omitempty,gt=0,lt=1"`
	Format string    `json:"format" validate:"omitempty,oneof=json csv"`
}

func TestDecodeAndValidate(t *testing.T) {
	v := NewValidator(quietLogger())

	decode := func(body string) (sampleRequest, error) {
		var dst sampleRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := v.DecodeAndValidate(httptest.NewRecorder(), req, &dst)
		return dst, err
	}

	got, err := decode(`{"values":[1,2,3],"alpha":0.1}`)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got.Values)

	tests := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{"missing values", `{"alpha":0.1}`, "VALIDATION_FAILED", "values"},
		{"alpha out of range", `{"values":[1],"alpha":1.5}`, "VALIDATION_FAILED", "alpha"},
		{"bad format", `{"values":[1],"format":"pdf"}`, "VALIDATION_FAILED", "format"},
		{"malformed json", `{"values":[1,`, "INVALID_JSON", ""},
		{"empty body", ``, "INVALID_REQUEST", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(tt.body)
			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.code, apiErr.ErrorCode)
			if tt.field != "" {
				details := apiErr.Details.(apierrors.ValidationErrors)
				require.Len(t, details.Errors, 1)
				assert.Equal(t, tt.field, details.Errors[0].Field)
			}
		})
	}
}

func TestDecodeAndValidateTooLarge(t *testing.T) {
	v := NewValidator(quietLogger())
	v.maxBodySize = 16

	var dst sampleRequest
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"values":[1,2,3,4,5,6,7,8,9]}`))
	err := v.DecodeAndValidate(httptest.NewRecorder(), req, &dst)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
}

type seriesRequest struct {
	Values []float64 `json:"values" validate:"required,series"`
}

func TestValidateSeriesLength(t *testing.T) {
	v := NewValidator(quietLogger()).WithMaxSeriesLength(3)

	require.NoError(t, v.ValidateStruct(seriesRequest{Values: []float64{1, 2, 3}}))

	err := v.ValidateStruct(seriesRequest{Values: []float64{1, 2, 3, 4}})
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	details := apiErr.Details.(apierrors.ValidationErrors)
	require.Len(t, details.Errors, 1)
	assert.Equal(t, "values", details.Errors[0].Field)
	assert.Contains(t, details.Errors[0].Message, "at most 3 values, got 4")

	// non-positive limits keep the default
	v = NewValidator(quietLogger()).WithMaxSeriesLength(0)
	assert.NoError(t, v.ValidateStruct(seriesRequest{Values: make([]float64, config.DefaultMaxSeriesLength)}))
	assert.Error(t, v.ValidateStruct(seriesRequest{Values: make([]float64, config.DefaultMaxSeriesLength+1)}))
}

func TestContentTypeValidator(t *testing.T) {
	eh := apierrors.NewErrorHandler(quietLogger(), false)
	h := ContentTypeValidator(eh, "application/json")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
