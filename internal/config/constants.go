package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "mktrend"
	AppVersion = "1.0.0"

	// Data quality thresholds for workbook analysis
	DefaultMinSamplesPerWell      = 5
	DefaultMinSamplesPerComponent = 4
	// Fewer sample columns than this in a workbook is flagged as not reliable
	MinPointsForReliableTest = 6
	// Value substituted for not-detected readings such as "ND" or "<ND"
	DefaultNotDetectedValue = 0.5

	// Uploads
	DefaultMaxUploadBytes = 10 * 1024 * 1024 // 10MB
	// Longest series accepted for one trend test or slope
	DefaultMaxSeriesLength = 5000

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	// Network Timeouts
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
	WebSocketBufferSize = 1024

	// API Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// SupportedExtensions lists the workbook file extensions accepted for analysis
var SupportedExtensions = []string{".xlsx", ".xlsm"}
