package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"mktrend/internal/trend"
)

// EnvPrefix namespaces every environment variable, e.g. MKT_SERVER_PORT
const EnvPrefix = "MKT"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/mktrend.log"`
}

// AnalysisConfig holds the trend test defaults and the data-quality thresholds
type AnalysisConfig struct {
	Alpha                  float64       `yaml:"alpha" envconfig:"ALPHA" default:"0.05"`
	Seasonal               bool          `yaml:"seasonal" envconfig:"SEASONAL" default:"false"`
	Period                 int           `yaml:"period" envconfig:"PERIOD" default:"12"`
	CalculateSlope         bool          `yaml:"calculate_slope" envconfig:"CALCULATE_SLOPE" default:"true"`
	MinSamplesPerWell      int           `yaml:"min_samples_per_well" envconfig:"MIN_SAMPLES_PER_WELL" default:"5"`
	MinSamplesPerComponent int           `yaml:"min_samples_per_component" envconfig:"MIN_SAMPLES_PER_COMPONENT" default:"4"`
	NotDetectedValue       float64       `yaml:"not_detected_value" envconfig:"NOT_DETECTED_VALUE" default:"0.5"`
	Workers                int           `yaml:"workers" envconfig:"WORKERS" default:"4"`
	CacheSize              int           `yaml:"cache_size" envconfig:"CACHE_SIZE" default:"256"`
	MaxUploadBytes         int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	MaxSeriesLength        int           `yaml:"max_series_length" envconfig:"MAX_SERIES_LENGTH" default:"5000"`
	Timeout                time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"2m"`
}

// TrendOptions converts the analysis defaults into trend test options
func (a AnalysisConfig) TrendOptions() trend.Options {
	return trend.Options{
		Alpha:          a.Alpha,
		Seasonal:       a.Seasonal,
		Period:         a.Period,
		CalculateSlope: a.CalculateSlope,
	}
}

// PathsConfig contains file system paths. Relative paths resolve against BaseDir,
// which defaults to the working directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName      string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"mktrend"`
	Environment      string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	EnableTracing    bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	EnableMetrics    bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio" envconfig:"TRACE_SAMPLE_RATIO" default:"1.0"`
	// TraceExporter is "stdout", "file" or "none"; a relative TraceFile lives in the logs directory
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"file"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE" default:"traces.jsonl"`
}

// Load loads configuration from environment variables and the first config file found
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from environment variables and the given YAML file.
// An empty path skips the file. Environment variables take precedence.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configFile, err)
		}
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// pick keeps the env value unless it is still the built-in default and the file sets one
func pick[T comparable](env, file, def T) T {
	var zero T
	if env == def && file != zero {
		return file
	}
	return env
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	d := Default()
	f := fileConfig
	c := envConfig

	c.Server.Port = pick(c.Server.Port, f.Server.Port, d.Server.Port)
	c.Server.ReadTimeout = pick(c.Server.ReadTimeout, f.Server.ReadTimeout, d.Server.ReadTimeout)
	c.Server.WriteTimeout = pick(c.Server.WriteTimeout, f.Server.WriteTimeout, d.Server.WriteTimeout)
	c.Server.IdleTimeout = pick(c.Server.IdleTimeout, f.Server.IdleTimeout, d.Server.IdleTimeout)
	c.Server.MaxHeaderBytes = pick(c.Server.MaxHeaderBytes, f.Server.MaxHeaderBytes, d.Server.MaxHeaderBytes)
	c.Server.ShutdownTimeout = pick(c.Server.ShutdownTimeout, f.Server.ShutdownTimeout, d.Server.ShutdownTimeout)
	c.Server.RequestTimeout = pick(c.Server.RequestTimeout, f.Server.RequestTimeout, d.Server.RequestTimeout)

	if len(f.Security.AllowedOrigins) > 0 && equalStrings(c.Security.AllowedOrigins, d.Security.AllowedOrigins) {
		c.Security.AllowedOrigins = f.Security.AllowedOrigins
	}
	c.Security.RateLimit.RPS = pick(c.Security.RateLimit.RPS, f.Security.RateLimit.RPS, d.Security.RateLimit.RPS)
	c.Security.RateLimit.Burst = pick(c.Security.RateLimit.Burst, f.Security.RateLimit.Burst, d.Security.RateLimit.Burst)

	c.Logging.Level = pick(c.Logging.Level, f.Logging.Level, d.Logging.Level)
	c.Logging.Format = pick(c.Logging.Format, f.Logging.Format, d.Logging.Format)
	c.Logging.Output = pick(c.Logging.Output, f.Logging.Output, d.Logging.Output)
	c.Logging.FilePath = pick(c.Logging.FilePath, f.Logging.FilePath, d.Logging.FilePath)

	c.Analysis.Alpha = pick(c.Analysis.Alpha, f.Analysis.Alpha, d.Analysis.Alpha)
	c.Analysis.Seasonal = pick(c.Analysis.Seasonal, f.Analysis.Seasonal, d.Analysis.Seasonal)
	c.Analysis.Period = pick(c.Analysis.Period, f.Analysis.Period, d.Analysis.Period)
	c.Analysis.MinSamplesPerWell = pick(c.Analysis.MinSamplesPerWell, f.Analysis.MinSamplesPerWell, d.Analysis.MinSamplesPerWell)
	c.Analysis.MinSamplesPerComponent = pick(c.Analysis.MinSamplesPerComponent, f.Analysis.MinSamplesPerComponent, d.Analysis.MinSamplesPerComponent)
	c.Analysis.NotDetectedValue = pick(c.Analysis.NotDetectedValue, f.Analysis.NotDetectedValue, d.Analysis.NotDetectedValue)
	c.Analysis.Workers = pick(c.Analysis.Workers, f.Analysis.Workers, d.Analysis.Workers)
	c.Analysis.CacheSize = pick(c.Analysis.CacheSize, f.Analysis.CacheSize, d.Analysis.CacheSize)
	c.Analysis.MaxUploadBytes = pick(c.Analysis.MaxUploadBytes, f.Analysis.MaxUploadBytes, d.Analysis.MaxUploadBytes)
	c.Analysis.MaxSeriesLength = pick(c.Analysis.MaxSeriesLength, f.Analysis.MaxSeriesLength, d.Analysis.MaxSeriesLength)
	c.Analysis.Timeout = pick(c.Analysis.Timeout, f.Analysis.Timeout, d.Analysis.Timeout)

	c.Paths.BaseDir = pick(c.Paths.BaseDir, f.Paths.BaseDir, d.Paths.BaseDir)
	c.Paths.DataDir = pick(c.Paths.DataDir, f.Paths.DataDir, d.Paths.DataDir)
	c.Paths.ReportsDir = pick(c.Paths.ReportsDir, f.Paths.ReportsDir, d.Paths.ReportsDir)
	c.Paths.LogsDir = pick(c.Paths.LogsDir, f.Paths.LogsDir, d.Paths.LogsDir)

	c.WebSocket.ReadBufferSize = pick(c.WebSocket.ReadBufferSize, f.WebSocket.ReadBufferSize, d.WebSocket.ReadBufferSize)
	c.WebSocket.WriteBufferSize = pick(c.WebSocket.WriteBufferSize, f.WebSocket.WriteBufferSize, d.WebSocket.WriteBufferSize)
	c.WebSocket.PingPeriod = pick(c.WebSocket.PingPeriod, f.WebSocket.PingPeriod, d.WebSocket.PingPeriod)
	c.WebSocket.PongWait = pick(c.WebSocket.PongWait, f.WebSocket.PongWait, d.WebSocket.PongWait)

	c.Telemetry.ServiceName = pick(c.Telemetry.ServiceName, f.Telemetry.ServiceName, d.Telemetry.ServiceName)
	c.Telemetry.Environment = pick(c.Telemetry.Environment, f.Telemetry.Environment, d.Telemetry.Environment)
	c.Telemetry.EnableTracing = pick(c.Telemetry.EnableTracing, f.Telemetry.EnableTracing, d.Telemetry.EnableTracing)
	c.Telemetry.TraceSampleRatio = pick(c.Telemetry.TraceSampleRatio, f.Telemetry.TraceSampleRatio, d.Telemetry.TraceSampleRatio)
	c.Telemetry.TraceExporter = pick(c.Telemetry.TraceExporter, f.Telemetry.TraceExporter, d.Telemetry.TraceExporter)
	c.Telemetry.TraceFile = pick(c.Telemetry.TraceFile, f.Telemetry.TraceFile, d.Telemetry.TraceFile)

	return c
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if err := c.Analysis.TrendOptions().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if c.Analysis.MinSamplesPerWell < 2 || c.Analysis.MinSamplesPerComponent < 2 {
		return fmt.Errorf("analysis minimum sample counts must be at least 2")
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis workers must be at least 1, got %d", c.Analysis.Workers)
	}

	if c.Analysis.MaxUploadBytes <= 0 {
		return fmt.Errorf("analysis max upload bytes must be positive")
	}

	if c.Analysis.MaxSeriesLength < c.Analysis.MinSamplesPerComponent {
		return fmt.Errorf("analysis max series length %d is below the minimum samples per component %d",
			c.Analysis.MaxSeriesLength, c.Analysis.MinSamplesPerComponent)
	}

	if c.WebSocket.ReadBufferSize <= 0 || c.WebSocket.WriteBufferSize <= 0 {
		return fmt.Errorf("websocket buffer sizes must be positive")
	}

	if c.WebSocket.PongWait <= 0 || c.WebSocket.PingPeriod <= 0 {
		return fmt.Errorf("websocket ping period and pong wait must be positive")
	}

	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket ping period %s must be shorter than pong wait %s",
			c.WebSocket.PingPeriod, c.WebSocket.PongWait)
	}

	if c.Telemetry.TraceSampleRatio < 0 || c.Telemetry.TraceSampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be in [0, 1], got %v", c.Telemetry.TraceSampleRatio)
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "file", "none":
	default:
		return fmt.Errorf("unsupported trace exporter %q, expected stdout, file or none", c.Telemetry.TraceExporter)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/mktrend.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"mktrend.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/mktrend.log",
		},
		Analysis: AnalysisConfig{
			Alpha:                  trend.DefaultAlpha,
			Period:                 trend.DefaultPeriod,
			CalculateSlope:         true,
			MinSamplesPerWell:      DefaultMinSamplesPerWell,
			MinSamplesPerComponent: DefaultMinSamplesPerComponent,
			NotDetectedValue:       DefaultNotDetectedValue,
			Workers:                4,
			CacheSize:              trend.DefaultCacheSize,
			MaxUploadBytes:         DefaultMaxUploadBytes,
			MaxSeriesLength:        DefaultMaxSeriesLength,
			Timeout:                2 * time.Minute,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketBufferSize,
			WriteBufferSize: WebSocketBufferSize,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
		Telemetry: TelemetryConfig{
			ServiceName:      AppName,
			Environment:      "development",
			EnableMetrics:    true,
			TraceSampleRatio: 1.0,
			TraceExporter:    "file",
			TraceFile:        "traces.jsonl",
		},
	}
}
