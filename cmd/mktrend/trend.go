package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mktrend/internal/exporter"
	"mktrend/internal/services"
	api "mktrend/pkg/contracts/api/v1"
)

var (
	testFlags trendFlags
	testJSON  bool
	slopeJSON bool
)

var testCmd = &cobra.Command{
	Use:   "test <value> <value>...",
	Short: "Run the Mann-Kendall test on a series given as arguments",
	Long: `Runs the Mann-Kendall test on the values in the order given.
Put -- before the first value when the series contains negative numbers:

  mktrend test -- -0.4 -0.1 0.3 0.8 1.2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTest,
}

var slopeCmd = &cobra.Command{
	Use:   "slope <value> <value>...",
	Short: "Compute Sen's slope of a series given as arguments",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSlope,
}

func init() {
	testFlags.register(testCmd)
	testCmd.Flags().BoolVar(&testJSON, "json", false, "print the result as JSON")
	slopeCmd.Flags().BoolVar(&slopeJSON, "json", false, "print the result as JSON")
}

func runTest(cmd *cobra.Command, args []string) error {
	values, err := parseValues(args)
	if err != nil {
		return err
	}
	opts, err := testFlags.options(cmd, cfg.Analysis.TrendOptions())
	if err != nil {
		return err
	}

	svc := services.NewAnalysisService(cfg.Analysis, services.AnalysisDeps{Logger: logger})
	result, err := svc.Test(cmd.Context(), values, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if testJSON {
		return exporter.WriteJSON(out, api.TrendResponse{Result: result, Options: opts})
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Trend:\t%s\n", result.Trend)
	fmt.Fprintf(tw, "Mann-Kendall statistic (S):\t%g\n", result.Statistic)
	fmt.Fprintf(tw, "Confidence factor:\t%g\n", result.ConfidenceFactor)
	fmt.Fprintf(tw, "Coefficient of variation:\t%g\n", result.CoefficientOfVariation)
	if opts.CalculateSlope {
		fmt.Fprintf(tw, "Sen's slope:\t%g\n", result.Slope)
	}
	fmt.Fprintf(tw, "Samples:\t%d\n", result.N)
	fmt.Fprintf(tw, "Z:\t%.4f\n", result.Z)
	fmt.Fprintf(tw, "p-value:\t%.4f\n", result.PValue)
	return tw.Flush()
}

func runSlope(cmd *cobra.Command, args []string) error {
	values, err := parseValues(args)
	if err != nil {
		return err
	}

	svc := services.NewAnalysisService(cfg.Analysis, services.AnalysisDeps{Logger: logger})
	slope, err := svc.Slope(cmd.Context(), values)
	if err != nil {
		return err
	}

	if slopeJSON {
		return exporter.WriteJSON(cmd.OutOrStdout(), api.SlopeResponse{Slope: slope, N: len(values)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%g\n", slope)
	return nil
}
