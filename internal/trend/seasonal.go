package trend

// seasonalStatistic sums S and the untied variance of each season, where season k holds
// x[k], x[k+period], x[k+2*period], ...
// ok is false when the series has fewer than two full cycles and the caller should fall
// back to the plain test.
func seasonalStatistic(x []float64, period int) (s, variance float64, ok bool) {
	if period < 1 || len(x)/period < 2 {
		return 0, 0, false
	}

	season := make([]float64, 0, len(x)/period+1)
	for k := 0; k < period; k++ {
		season = season[:0]
		for i := k; i < len(x); i += period {
			season = append(season, x[i])
		}
		if len(season) < 2 {
			continue
		}
		s += statistic(season)
		variance += untiedVariance(len(season))
	}
	return s, variance, true
}
