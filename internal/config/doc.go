// Package config provides centralized configuration management for mktrend.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MKT_* for namespacing:
//
//	MKT_SERVER_PORT=8080
//	MKT_LOGGING_LEVEL=debug
//	MKT_ANALYSIS_ALPHA=0.05
//	MKT_ANALYSIS_SEASONAL=true
//	MKT_ANALYSIS_PERIOD=4
//	MKT_CONFIG_FILE=/etc/mktrend/config.yaml
//
// # Configuration File
//
// Without MKT_CONFIG_FILE the first of mktrend.yaml, config.yaml and
// configs/config.yaml found in the working directory is used:
//
//	analysis:
//	  alpha: 0.05
//	  period: 12
//	  min_samples_per_well: 5
//	  not_detected_value: 0.5
//	logging:
//	  level: debug
//	  output: both
//
// # Path Management
//
// Paths resolves the data, reports and logs directories against the base directory:
//
//	paths, err := cfg.Paths.Resolve()
//	reportPath := paths.GetReportPath("wells_2024_01_31_1234.xlsx")
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default(), which needs no environment variables or files.
package config
