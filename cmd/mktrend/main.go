package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mktrend/internal/config"
	"mktrend/internal/infrastructure"
	"mktrend/pkg/contracts"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFile    string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mktrend",
	Short: "Mann-Kendall trend analysis for groundwater monitoring data",
	Long: `mktrend classifies concentration trends of monitoring-well series with the
Mann-Kendall test, its seasonal variant and Sen's slope.

Analyse a workbook laid out with wells in row 1, sample dates in row 2 and one
component per following row:

  mktrend analyze monitoring.xlsx -o trends.csv --summary`,
	Version:           contracts.GetVersionString(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = infrastructure.CloseLogFile()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default: first of ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(analyzeCmd, testCmd, slopeCmd, reportsCmd, serveCmd)
}

// setup loads the configuration and builds the stderr logger shared by all commands
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd != serveCmd {
		// results go to stdout, so the console log stays quiet unless asked
		cfg.Logging.Level = "warn"
		cfg.Logging.Output = "console"
	}
	switch {
	case verbose:
		cfg.Logging.Level = "debug"
	case logLevel != "":
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.Output = "both"
		cfg.Logging.FilePath = logFile
	}
	if cmd == serveCmd {
		// the application installs its own global logger
		return nil
	}

	logger, err = infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
