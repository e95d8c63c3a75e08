package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mktrend/internal/config"
	"mktrend/internal/dataprocessing"
	"mktrend/internal/exporter"
	"mktrend/internal/files"
	"mktrend/internal/services"
	"mktrend/internal/validation"
)

var (
	analyzeFlags trendFlags
	outputPath   string
	outputFormat string
	printSummary bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <workbook.xlsx | directory>",
	Short: "Run the trend test on every well and component of a workbook",
	Long: `Reads the first sheet of the workbook (wells in row 1, sample dates in row 2,
one component per following row), tests every well/component series and writes the
result table. Given a directory, the most recently modified workbook in it is used.

Without -o the table is written to the reports directory under a name derived from
the workbook. "-o -" writes it to stdout. The format follows --format, or the
extension of -o when --format is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file, - for stdout")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "", "output format: xlsx, csv or json (default xlsx)")
	analyzeCmd.Flags().BoolVar(&printSummary, "summary", false, "print the trend distribution")
	analyzeFlags.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := analyzeFlags.options(cmd, cfg.Analysis.TrendOptions())
	if err != nil {
		return err
	}

	format, err := resolveFormat(cmd, outputPath, outputFormat)
	if err != nil {
		return err
	}

	workbook, err := resolveWorkbook(args[0])
	if err != nil {
		return err
	}

	validator := validation.NewFileValidator(cfg.Analysis.MaxUploadBytes, logger)
	if err := validator.ValidateWorkbook(workbook); err != nil {
		return err
	}
	if outputPath != "" && outputPath != "-" {
		if err := validator.ValidateOutputFile(outputPath); err != nil {
			return err
		}
	}

	svc := services.NewAnalysisService(cfg.Analysis, services.AnalysisDeps{Logger: logger})
	report, err := svc.AnalyzeFile(cmd.Context(), workbook, opts)
	if err != nil {
		return err
	}

	for _, w := range report.Warnings {
		logger.Warn("Workbook warning", slog.String("warning", w))
	}
	for _, s := range report.Skipped {
		logger.Info("Series skipped",
			slog.String("well", s.Well),
			slog.String("component", s.Component),
			slog.String("reason", s.Reason))
	}

	out := cmd.OutOrStdout()
	switch outputPath {
	case "-":
		if err := exporter.Write(out, format, report.Rows); err != nil {
			return err
		}
	case "":
		paths, err := cfg.Paths.Resolve()
		if err != nil {
			return err
		}
		path, err := exporter.NewFileWriter(paths).WriteReport(workbook, format, report.Rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d series to %s\n", len(report.Rows), path)
	default:
		if err := exporter.WriteFile(outputPath, format, report.Rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d series to %s\n", len(report.Rows), outputPath)
	}

	if printSummary {
		fmt.Fprintln(out)
		return dataprocessing.WriteSummary(out, report.Summary, len(report.Skipped))
	}
	return nil
}

// resolveWorkbook returns arg itself, or the newest workbook when arg is a directory
func resolveWorkbook(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil || !info.IsDir() {
		// the validator reports missing files
		return arg, nil
	}

	workbooks, err := files.NewDiscovery("").FindWorkbooks(arg)
	if err != nil {
		return "", err
	}
	latest, ok := files.GetLatestFile(workbooks)
	if !ok {
		return "", fmt.Errorf("no workbooks (%s) in %s", strings.Join(config.SupportedExtensions, ", "), arg)
	}
	logger.Info("Using latest workbook in directory",
		slog.String("dir", arg),
		slog.String("workbook", latest.Name))
	return latest.Path, nil
}

// resolveFormat prefers --format, then the output extension, then xlsx
func resolveFormat(cmd *cobra.Command, output, format string) (exporter.Format, error) {
	if cmd.Flags().Changed("format") || output == "" || output == "-" {
		return exporter.ParseFormat(format)
	}
	if ext := filepath.Ext(output); ext != "" {
		if f, err := exporter.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return exporter.ParseFormat(format)
}
