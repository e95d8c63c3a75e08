package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktrend/internal/config"
	apierrors "mktrend/internal/errors"
	"mktrend/internal/services"
	"mktrend/pkg/contracts"
)

func newTestHealthHandler(t *testing.T) (*HealthHandler, *config.Paths) {
	t.Helper()
	paths, err := config.PathsConfig{BaseDir: t.TempDir()}.Resolve()
	require.NoError(t, err)

	svc := services.NewHealthService(paths, nil, newAnalysisService(), quietLogger())
	return NewHealthHandler(svc, quietLogger()), paths
}

func TestHealthHandlerRoutes(t *testing.T) {
	h, _ := newTestHealthHandler(t)
	routes := h.Routes()

	tests := []struct {
		path   string
		status string
	}{
		{"/", "ok"},
		{"/ready", "ready"},
		{"/live", "alive"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.status, decodeBody(t, rec)["status"])
		})
	}
}

func TestHealthHandlerNotReady(t *testing.T) {
	h, paths := newTestHealthHandler(t)
	require.NoError(t, os.RemoveAll(paths.ReportsDir))
	require.NoError(t, os.WriteFile(paths.ReportsDir, []byte("x"), 0o644))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", decodeBody(t, rec)["status"])
}

func TestHealthHandlerVersion(t *testing.T) {
	h, _ := newTestHealthHandler(t)

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, config.AppName, body["name"])
	assert.Equal(t, contracts.Version, body["version"])
	assert.Equal(t, contracts.APIVersion, body["api_version"])
}

func TestMetricsHandler(t *testing.T) {
	eh := apierrors.NewErrorHandler(quietLogger(), false)

	rec := httptest.NewRecorder()
	NewMetricsHandler(nil, eh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apierrors.TypeServiceDown, decodeBody(t, rec)["type"])

	exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP mktrend_up\n"))
	})
	rec = httptest.NewRecorder()
	NewMetricsHandler(exporter, eh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mktrend_up")
}
