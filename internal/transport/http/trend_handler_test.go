package http

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktrend/internal/config"
	apierrors "mktrend/internal/errors"
	"mktrend/internal/middleware"
	"mktrend/internal/services"
)

func TestTrendHandlerTest(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	rec := postJSON(t, h, "/test", `{"values":[1,2,3,4,5,6,7,8,9,10]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, "increasing", result["trend"])
	assert.Equal(t, 45.0, result["statistic"])
	assert.Equal(t, 1.0, result["slope"])

	options := body["options"].(map[string]interface{})
	assert.Equal(t, false, options["seasonal"])
}

func TestTrendHandlerOverridesOptions(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	rec := postJSON(t, h, "/test", `{"values":[5,4,3,2,1],"calculate_slope":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, "decreasing", result["trend"])
	assert.Equal(t, 0.0, result["slope"])
	assert.Equal(t, false, body["options"].(map[string]interface{})["calculate_slope"])
}

func TestTrendHandlerErrors(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	tests := []struct {
		name        string
		body        string
		status      int
		problemType string
	}{
		{"missing values", `{"alpha":0.05}`, http.StatusBadRequest, apierrors.TypeValidation},
		{"alpha out of range", `{"values":[1,2,3],"alpha":2}`, http.StatusBadRequest, apierrors.TypeValidation},
		{"single value", `{"values":[1]}`, http.StatusBadRequest, apierrors.TypeTrendInvalidInput},
		{"malformed", `{"values":`, http.StatusBadRequest, apierrors.TypeValidation},
		{"short seasonal", `{"values":[1,2,3,4,5],"seasonal":true,"period":4}`, http.StatusUnprocessableEntity, apierrors.TypeTrendInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/test", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.problemType, decodeBody(t, rec)["type"])
		})
	}
}

func TestTrendHandlerRequiresJSON(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestTrendHandlerSlope(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	rec := postJSON(t, h, "/slope", `{"values":[2,4,6,8]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, 2.0, body["slope"])
	assert.Equal(t, 4.0, body["n"])
}

func TestTrendHandlerCache(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	for i := 0; i < 2; i++ {
		rec := postJSON(t, h, "/test", `{"values":[1,3,2,5,4,6]}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cache := decodeBody(t, rec)["cache"].(map[string]interface{})
	assert.Equal(t, 1.0, cache["hits"])
	assert.Equal(t, 1.0, cache["misses"])
	assert.Equal(t, 1.0, cache["size"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["cleared"])
	assert.Equal(t, 0.0, body["cache"].(map[string]interface{})["size"])
}

// seriesBody renders {"values":[1,2,...,n]}
func seriesBody(n int) string {
	var b strings.Builder
	b.WriteString(`{"values":[`)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(i))
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestTrendHandlerRejectsLongSeries(t *testing.T) {
	h := newTestTrendHandler(newAnalysisService())

	for _, path := range []string{"/test", "/slope"} {
		t.Run(path, func(t *testing.T) {
			rec := postJSON(t, h, path, seriesBody(config.DefaultMaxSeriesLength+1))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			assert.Equal(t, apierrors.TypeValidation, body["type"])
			errs := body["details"].(map[string]interface{})["errors"].([]interface{})
			require.Len(t, errs, 1)
			assert.Equal(t, "values", errs[0].(map[string]interface{})["field"])
		})
	}
}

func TestTrendHandlerSeriesLimitFromConfig(t *testing.T) {
	logger := quietLogger()
	cfg := config.Default().Analysis
	cfg.MaxSeriesLength = 10
	svc := services.NewAnalysisService(cfg, services.AnalysisDeps{Logger: logger})

	// the validator keeps its default, so the service enforces the configured cap
	h := NewTrendHandler(svc, middleware.NewValidator(logger), apierrors.NewErrorHandler(logger, false), logger).Routes()
	rec := postJSON(t, h, "/slope", seriesBody(11))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, apierrors.TypeTrendInvalidInput, decodeBody(t, rec)["type"])

	h = NewTrendHandler(svc, middleware.NewValidator(logger).WithMaxSeriesLength(10),
		apierrors.NewErrorHandler(logger, false), logger).Routes()
	rec = postJSON(t, h, "/test", seriesBody(11))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, apierrors.TypeValidation, decodeBody(t, rec)["type"])

	rec = postJSON(t, h, "/test", seriesBody(10))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
