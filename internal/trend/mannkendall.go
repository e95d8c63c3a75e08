package trend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Test runs the Mann-Kendall test on x with the default options adjusted by opts
func Test(x []float64, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return TestWithOptions(x, o)
}

// TestWithOptions runs the Mann-Kendall test on x. x is not modified.
func TestWithOptions(x []float64, o Options) (Result, error) {
	if err := validateSeries(x); err != nil {
		return Result{}, err
	}
	if err := o.Validate(); err != nil {
		return Result{}, err
	}

	n := len(x)
	if o.Seasonal && n < o.Period*2 {
		return Result{}, fmt.Errorf("%w: seasonal test with period %d needs at least %d values, got %d",
			ErrInsufficientData, o.Period, o.Period*2, n)
	}

	if allEqual(x) {
		return Result{Trend: NoTrend, N: n, PValue: 1}, nil
	}

	switch n {
	case 2:
		s := sign(x[1] - x[0])
		return shortResult(x, s, PairConfidence), nil
	case 3:
		s := sign(x[1]-x[0]) + sign(x[2]-x[0]) + sign(x[2]-x[1])
		return shortResult(x, s, TripletConfidence), nil
	}

	var (
		s, variance float64
		seasonal    bool
	)
	if o.Seasonal {
		s, variance, seasonal = seasonalStatistic(x, o.Period)
	}
	if !seasonal {
		s = statistic(x)
		variance = varianceOfS(x)
	}

	z := standardize(s, variance)
	p := 1 - distuv.UnitNormal.CDF(math.Abs(z))
	cf := 1 - p

	label := Classify(cf, s)
	if seasonal {
		label = label.seasonal()
	}

	res := Result{
		Trend:                  label,
		Statistic:              s,
		CoefficientOfVariation: coefficientOfVariation(x),
		ConfidenceFactor:       cf,
		N:                      n,
		Variance:               variance,
		Z:                      z,
		PValue:                 p,
	}
	if o.CalculateSlope {
		if slope, err := SensSlope(x); err == nil {
			res.Slope = slope
		}
	}
	return res.rounded(), nil
}

func shortResult(x []float64, s float64, cf float64) Result {
	res := Result{
		Trend:                  bySign(s),
		Statistic:              s,
		CoefficientOfVariation: coefficientOfVariation(x),
		ConfidenceFactor:       cf,
		N:                      len(x),
		PValue:                 1 - cf,
	}
	return res.rounded()
}

func validateSeries(x []float64) error {
	if x == nil {
		return fmt.Errorf("%w: series is nil", ErrInvalidInput)
	}
	if len(x) < 2 {
		return fmt.Errorf("%w: series needs at least 2 values, got %d", ErrInvalidInput, len(x))
	}
	for i, v := range x {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: value %d is NaN", ErrInvalidInput, i)
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: value %d is infinite", ErrInvalidInput, i)
		}
	}
	return nil
}

func allEqual(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

func sign(d float64) float64 {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

// statistic returns S, the sum of sign(x[j]-x[i]) over all i<j
func statistic(x []float64) float64 {
	var s float64
	for i := 0; i < len(x)-1; i++ {
		for j := i + 1; j < len(x); j++ {
			s += sign(x[j] - x[i])
		}
	}
	return s
}

func untiedVariance(n int) float64 {
	nf := float64(n)
	return nf * (nf - 1) * (2*nf + 5) / 18
}

// varianceOfS returns var(S) with the correction for groups of tied values
func varianceOfS(x []float64) float64 {
	groups := make(map[float64]int, len(x))
	for _, v := range x {
		groups[v]++
	}
	if len(groups) == len(x) {
		return untiedVariance(len(x))
	}

	nf := float64(len(x))
	ties := 0.0
	for _, t := range groups {
		tf := float64(t)
		ties += tf * (tf - 1) * (2*tf + 5)
	}
	return (nf*(nf-1)*(2*nf+5) - ties) / 18
}

// standardize converts S into Z with a continuity correction of one towards zero
func standardize(s, variance float64) float64 {
	if variance <= 0 {
		return 0
	}
	sd := math.Sqrt(variance)
	switch {
	case s > 0:
		return (s - 1) / sd
	case s < 0:
		return (s + 1) / sd
	default:
		return 0
	}
}

// coefficientOfVariation is the sample standard deviation over the mean.
// A mean within 1e-10 of zero gives +Inf, or 0 when the series has no spread.
func coefficientOfVariation(x []float64) float64 {
	mean := stat.Mean(x, nil)
	sd := stat.StdDev(x, nil)
	if math.Abs(mean) < zeroMeanTolerance {
		if sd > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return sd / mean
}

func (r Result) rounded() Result {
	r.Statistic = roundTo(r.Statistic, statisticDecimals)
	r.CoefficientOfVariation = roundTo(r.CoefficientOfVariation, variationDecimals)
	r.ConfidenceFactor = roundTo(r.ConfidenceFactor, confidenceDecimals)
	r.Slope = roundTo(r.Slope, slopeDecimals)
	return r
}

func roundTo(v float64, decimals int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
