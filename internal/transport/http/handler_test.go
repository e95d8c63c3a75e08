package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"mktrend/internal/config"
	apierrors "mktrend/internal/errors"
	"mktrend/internal/middleware"
	"mktrend/internal/services"
	"mktrend/internal/shared/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newAnalysisService() *services.AnalysisService {
	return services.NewAnalysisService(config.Default().Analysis, services.AnalysisDeps{Logger: quietLogger()})
}

func newTestTrendHandler(svc AnalysisServiceInterface) http.Handler {
	logger := quietLogger()
	return NewTrendHandler(svc, middleware.NewValidator(logger), apierrors.NewErrorHandler(logger, false), logger).Routes()
}

func newTestAnalysisHandler(svc AnalysisServiceInterface, maxUpload int64) http.Handler {
	logger := quietLogger()
	return NewAnalysisHandler(svc, middleware.NewValidator(logger), apierrors.NewErrorHandler(logger, false), maxUpload, logger).Routes()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func monitoringWorkbook(t *testing.T) []byte {
	return testutil.BuildWorkbook(t, testutil.MonitoringRows())
}

// multipartRequest builds an upload; a nil workbook omits the file part
func multipartRequest(t *testing.T, workbook []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if workbook != nil {
		part, err := mw.CreateFormFile("file", "monitoring.xlsx")
		require.NoError(t, err)
		_, err = part.Write(workbook)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
