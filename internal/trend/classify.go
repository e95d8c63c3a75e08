package trend

// Classify maps a confidence factor and the sign of S onto a non-seasonal label.
// It is the only place the confidence bands are applied; cf must be the unrounded value.
func Classify(cf, s float64) Trend {
	switch {
	case cf < ProbableConfidence:
		return NoTrend
	case cf <= StrongConfidence:
		if s > 0 {
			return ProbablyIncreasing
		}
		return ProbablyDecreasing
	default:
		if s > 0 {
			return Increasing
		}
		return Decreasing
	}
}

// ClassifySeasonal is Classify with the seasonal labels
func ClassifySeasonal(cf, s float64) Trend {
	return Classify(cf, s).seasonal()
}

// bySign labels the short series that skip the normal approximation
func bySign(s float64) Trend {
	switch {
	case s > 0:
		return Increasing
	case s < 0:
		return Decreasing
	default:
		return NoTrend
	}
}
