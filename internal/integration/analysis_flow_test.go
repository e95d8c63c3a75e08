package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"mktrend/internal/app"
	"mktrend/internal/config"
	apierrors "mktrend/internal/errors"
	"mktrend/internal/shared/testutil"
	"mktrend/internal/trend"
	"mktrend/pkg/contracts/domain"
	"mktrend/pkg/contracts/events"
)

// AnalysisFlowTestSuite drives one running server through the whole upload flow
type AnalysisFlowTestSuite struct {
	suite.Suite
	app     *app.Application
	baseURL string
	cancel  context.CancelFunc
	client  *http.Client
}

func (s *AnalysisFlowTestSuite) SetupSuite() {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Paths.BaseDir = s.T().TempDir()
	cfg.Logging.Level = "error"
	cfg.Logging.Output = "console"
	cfg.Security.RateLimit.Enabled = false

	application, err := app.NewApplication(cfg)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Require().NoError(application.Start(ctx, cancel))

	s.app = application
	s.cancel = cancel
	s.baseURL = "http://" + application.Addr()
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *AnalysisFlowTestSuite) TearDownSuite() {
	if s.app != nil {
		s.NoError(s.app.Stop(context.Background()))
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *AnalysisFlowTestSuite) SetupTest() {
	req, err := http.NewRequest(http.MethodDelete, s.baseURL+"/api/trend/cache", nil)
	s.Require().NoError(err)
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
}

func (s *AnalysisFlowTestSuite) upload(fields map[string]string) *http.Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", "monitoring.xlsx")
	s.Require().NoError(err)
	_, err = part.Write(testutil.BuildWorkbook(s.T(), testutil.MonitoringRows()))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	resp, err := s.client.Post(s.baseURL+"/api/analysis", mw.FormDataContentType(), &buf)
	s.Require().NoError(err)
	return resp
}

func (s *AnalysisFlowTestSuite) postJSON(path, body string) *http.Response {
	resp, err := s.client.Post(s.baseURL+path, "application/json", strings.NewReader(body))
	s.Require().NoError(err)
	return resp
}

func (s *AnalysisFlowTestSuite) dialProgress() *gorilla.Conn {
	before := s.app.WebSocketHub.ClientCount()
	conn, _, err := gorilla.DefaultDialer.Dial("ws://"+s.app.Addr()+"/ws", nil)
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		return s.app.WebSocketHub.ClientCount() == before+1
	}, 2*time.Second, 10*time.Millisecond)

	var hello events.Message
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	s.Require().NoError(conn.ReadJSON(&hello))
	s.Require().Equal(events.MessageTypeConnection, hello.Type)
	return conn
}

func (s *AnalysisFlowTestSuite) TestWorkbookUploadStreamsProgress() {
	conn := s.dialProgress()
	defer conn.Close()

	resp := s.upload(nil)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var report domain.AnalysisReport
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&report))
	s.Equal(report.ID, resp.Header.Get("X-Analysis-ID"))
	s.Equal("monitoring.xlsx", report.Source)
	s.Require().Len(report.Rows, 2)
	s.Equal(trend.Increasing, report.Rows[0].Result.Trend)
	s.Equal(2, report.Summary.Total)
	s.Require().Len(report.Skipped, 1)
	s.Equal("PM-02", report.Skipped[0].Well)

	var progress []events.AnalysisProgress
	var complete *events.AnalysisComplete
	for complete == nil {
		s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
		var raw struct {
			Type events.MessageType `json:"type"`
			Data json.RawMessage    `json:"data"`
		}
		s.Require().NoError(conn.ReadJSON(&raw))

		switch raw.Type {
		case events.MessageTypeAnalysisProgress:
			var p events.AnalysisProgress
			s.Require().NoError(json.Unmarshal(raw.Data, &p))
			progress = append(progress, p)
		case events.MessageTypeAnalysisComplete:
			complete = &events.AnalysisComplete{}
			s.Require().NoError(json.Unmarshal(raw.Data, complete))
		}
	}

	s.Equal(report.ID, complete.AnalysisID)
	s.Equal(2, complete.Rows)
	s.Equal(1, complete.Skipped)
	s.Require().Len(progress, 2)
	for _, p := range progress {
		s.Equal(report.ID, p.AnalysisID)
		s.Equal(2, p.Total)
	}
}

func (s *AnalysisFlowTestSuite) TestWorkbookUploadAsCSV() {
	resp := s.upload(map[string]string{"format": "csv", "calculate_slope": "false"})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Disposition"), "monitoring_")
	s.Contains(resp.Header.Get("Content-Disposition"), ".csv")

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte("\ufeff")))).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("Well", records[0][0])
	s.Equal("PM-01", records[1][0])
}

func (s *AnalysisFlowTestSuite) TestTrendCacheAcrossRequests() {
	const body = `{"values":[1.2,1.4,1.1,1.9,2.3,2.2,2.8,3.1]}`
	for i := 0; i < 3; i++ {
		resp := s.postJSON("/api/trend/test", body)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := s.client.Get(s.baseURL + "/api/trend/cache")
	s.Require().NoError(err)
	defer resp.Body.Close()

	var stats struct {
		Cache trend.CacheStats `json:"cache"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&stats))
	s.Equal(1, stats.Cache.Size)
	s.EqualValues(2, stats.Cache.Hits)
	s.EqualValues(1, stats.Cache.Misses)
}

func (s *AnalysisFlowTestSuite) TestConcurrentTrendRequests() {
	var wg sync.WaitGroup
	codes := make([]int, 16)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"values":[%d,%d,%d,%d,%d,%d]}`, i, i+1, i+2, i+3, i+4, i+5)
			resp, err := s.client.Post(s.baseURL+"/api/trend/test", "application/json", strings.NewReader(body))
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		s.Equal(http.StatusOK, code, "request %d", i)
	}
}

func (s *AnalysisFlowTestSuite) TestProblemDetails() {
	resp := s.postJSON("/api/trend/test", `{"values":[1]}`)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var problem map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	s.Equal(apierrors.TypeTrendInvalidInput, problem["type"])
	s.NotEmpty(problem["trace_id"])

	resp = s.postJSON("/api/trend/test", `{"values":[1,2,3,4,5,6,7,8],"seasonal":true,"period":12}`)
	defer resp.Body.Close()
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *AnalysisFlowTestSuite) TestMetricsAfterTraffic() {
	resp := s.postJSON("/api/trend/test", `{"values":[5,4,3,2,1]}`)
	resp.Body.Close()

	resp, err := s.client.Get(s.baseURL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "trend_tests_total")
	s.Contains(string(body), "http_requests_total")
}

func TestAnalysisFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end suite in short mode")
	}
	suite.Run(t, new(AnalysisFlowTestSuite))
}

func TestReadinessTracksReportsDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Logging.Level = "error"
	cfg.Security.RateLimit.Enabled = false

	application, err := app.NewApplication(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, application.Start(ctx, cancel))
	defer application.Stop(context.Background())

	ready := func() int {
		resp, err := http.Get("http://" + application.Addr() + "/api/health/ready")
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusOK, ready())

	reports := application.Paths.ReportsDir
	require.NoError(t, os.RemoveAll(reports))
	require.NoError(t, os.WriteFile(reports, []byte("x"), 0o644))
	assert.Equal(t, http.StatusServiceUnavailable, ready())

	require.NoError(t, os.Remove(reports))
	require.NoError(t, os.MkdirAll(filepath.Clean(reports), 0o755))
	assert.Equal(t, http.StatusOK, ready())
}
