package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadFrom tests loading with various env and file combinations
func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without env or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 50.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, 0.05, cfg.Analysis.Alpha)
				assert.Equal(t, 12, cfg.Analysis.Period)
				assert.True(t, cfg.Analysis.CalculateSlope)
				assert.False(t, cfg.Analysis.Seasonal)
				assert.Equal(t, 5, cfg.Analysis.MinSamplesPerWell)
				assert.Equal(t, 4, cfg.Analysis.MinSamplesPerComponent)
				assert.Equal(t, 0.5, cfg.Analysis.NotDetectedValue)
				assert.Equal(t, 256, cfg.Analysis.CacheSize)
				assert.Equal(t, int64(10485760), cfg.Analysis.MaxUploadBytes)
				assert.Equal(t, 5000, cfg.Analysis.MaxSeriesLength)
				assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
				assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
				assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, "file", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "traces.jsonl", cfg.Telemetry.TraceFile)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"MKT_SERVER_PORT":         "9090",
				"MKT_ANALYSIS_SEASONAL":   "true",
				"MKT_ANALYSIS_PERIOD":     "4",
				"MKT_LOGGING_LEVEL":       "debug",
				"MKT_ANALYSIS_WORKERS":    "8",
				"MKT_LOGGING_FORMAT":      "text",
				"MKT_ANALYSIS_CACHE_SIZE": "32",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.True(t, cfg.Analysis.Seasonal)
				assert.Equal(t, 4, cfg.Analysis.Period)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 8, cfg.Analysis.Workers)
				assert.Equal(t, 32, cfg.Analysis.CacheSize)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "file values fill in defaults",
			file: `
server:
  port: 7070
analysis:
  alpha: 0.1
  seasonal: true
  period: 4
  not_detected_value: 0.25
logging:
  output: both
paths:
  reports_dir: out
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 0.1, cfg.Analysis.Alpha)
				assert.True(t, cfg.Analysis.Seasonal)
				assert.Equal(t, 4, cfg.Analysis.Period)
				assert.Equal(t, 0.25, cfg.Analysis.NotDetectedValue)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "out", cfg.Paths.ReportsDir)
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"MKT_SERVER_PORT": "9191"},
			file: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
			},
		},
		{
			name: "series and websocket limits from env",
			env: map[string]string{
				"MKT_ANALYSIS_MAX_SERIES_LENGTH": "200",
				"MKT_WEBSOCKET_PONG_WAIT":        "20s",
				"MKT_WEBSOCKET_PING_PERIOD":      "15s",
				"MKT_WEBSOCKET_READ_BUFFER_SIZE": "4096",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 200, cfg.Analysis.MaxSeriesLength)
				assert.Equal(t, 20*time.Second, cfg.WebSocket.PongWait)
				assert.Equal(t, 15*time.Second, cfg.WebSocket.PingPeriod)
				assert.Equal(t, 4096, cfg.WebSocket.ReadBufferSize)
				assert.Equal(t, 1024, cfg.WebSocket.WriteBufferSize)
			},
		},
		{
			name: "websocket settings from file",
			file: "websocket:\n  pong_wait: 45s\n  ping_period: 40s\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 45*time.Second, cfg.WebSocket.PongWait)
				assert.Equal(t, 40*time.Second, cfg.WebSocket.PingPeriod)
			},
		},
		{
			name:    "max series length below component minimum",
			env:     map[string]string{"MKT_ANALYSIS_MAX_SERIES_LENGTH": "2"},
			wantErr: true,
		},
		{
			name:    "ping period not shorter than pong wait",
			env:     map[string]string{"MKT_WEBSOCKET_PING_PERIOD": "90s"},
			wantErr: true,
		},
		{
			name:    "invalid alpha",
			env:     map[string]string{"MKT_ANALYSIS_ALPHA": "1.5"},
			wantErr: true,
		},
		{
			name:    "invalid port",
			env:     map[string]string{"MKT_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "seasonal with zero period",
			env:     map[string]string{"MKT_ANALYSIS_SEASONAL": "true", "MKT_ANALYSIS_PERIOD": "0"},
			wantErr: true,
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"MKT_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:    "malformed file",
			file:    "server: [unclosed",
			wantErr: true,
		},
		{
			name:    "non numeric env",
			env:     map[string]string{"MKT_ANALYSIS_WORKERS": "many"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "analysis:\n  period: 6\n")
	t.Setenv("MKT_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Analysis.Period)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())

	opts := cfg.Analysis.TrendOptions()
	assert.Equal(t, 0.05, opts.Alpha)
	assert.Equal(t, 12, opts.Period)
	assert.True(t, opts.CalculateSlope)
	assert.False(t, opts.Seasonal)
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.validate())
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/mktrend.log", cfg.Logging.FilePath)
}

func TestPathsResolve(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	paths, err := PathsConfig{BaseDir: base, DataDir: "d", ReportsDir: abs}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "d"), paths.DataDir)
	assert.Equal(t, abs, paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir)

	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.DataDir))
	assert.True(t, FileExists(paths.ReportsDir))
	assert.Equal(t, filepath.Join(abs, "r.csv"), paths.GetReportPath("../../r.csv"))
}
