package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mktrend/internal/trend"
)

// trendFlags are the test options every analysing command accepts
type trendFlags struct {
	alpha    float64
	seasonal bool
	period   int
	noSlope  bool
}

func (f *trendFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.alpha, "alpha", trend.DefaultAlpha, "significance level, 0 < alpha < 1")
	cmd.Flags().BoolVar(&f.seasonal, "seasonal", false, "run the seasonal Mann-Kendall test")
	cmd.Flags().IntVar(&f.period, "period", trend.DefaultPeriod, "samples per seasonal cycle")
	cmd.Flags().BoolVar(&f.noSlope, "no-slope", false, "skip Sen's slope")
}

// options overrides the configured defaults with the flags set on cmd
func (f *trendFlags) options(cmd *cobra.Command, defaults trend.Options) (trend.Options, error) {
	opts := defaults
	if cmd.Flags().Changed("alpha") {
		opts.Alpha = f.alpha
	}
	if cmd.Flags().Changed("seasonal") {
		opts.Seasonal = f.seasonal
	}
	if cmd.Flags().Changed("period") {
		opts.Period = f.period
	}
	if f.noSlope {
		opts.CalculateSlope = false
	}
	return opts, opts.Validate()
}

// parseValues converts command arguments into a series
func parseValues(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d (%q) is not a number", i+1, arg)
		}
		values = append(values, v)
	}
	return values, nil
}
