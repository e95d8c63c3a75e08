// Package trend implements the Mann-Kendall trend test used to classify monitoring-well series.
//
// The test is non-parametric: it only looks at the signs of pairwise differences, so it
// needs no assumption about the distribution of the measured values and tolerates the
// censored and tied readings common in groundwater chemistry.
//
// # Core Components
//
//  1. S statistic: sum of sign(x[j]-x[i]) over every pair i<j
//  2. Variance of S, corrected for groups of tied values
//  3. Z score with a continuity correction of one unit towards zero
//  4. Confidence factor CF = 1 - p, where p is the one-tailed normal p-value of |Z|
//  5. Coefficient of variation of the whole series
//  6. Sen's slope, the median of all pairwise rates of change
//
// # Classification
//
// The confidence factor is mapped onto a closed set of labels by Classify:
//
//	CF <  0.90          no trend
//	0.90 <= CF <= 0.95  probably increasing / probably decreasing
//	CF >  0.95          increasing / decreasing
//
// The seasonal variant of the test uses the same bands with a "seasonal " prefix.
//
// # Small samples
//
// The normal approximation is not valid for very short series, yet callers still need a
// direction. Two values are compared directly (CF 0.5), three values use the sum of the
// three pair signs (CF 0.6) and a constant series is always "no trend" with S, CV and CF
// set to zero.
//
// # Usage Example
//
//	res, err := trend.Test(values, trend.WithAlpha(0.05), trend.WithSeasonal(12))
//	if errors.Is(err, trend.ErrInsufficientData) {
//	    // fewer than two full cycles
//	}
//	fmt.Println(res.Trend, res.Statistic, res.ConfidenceFactor, res.Slope)
//
// Results are pure functions of their inputs. Cache memoizes them in a bounded LRU for
// callers that analyse the same series repeatedly.
package trend
