package api

import "mktrend/internal/trend"

// TrendResponse is the outcome of a single-series test
type TrendResponse struct {
	Result  trend.Result  `json:"result"`
	Options trend.Options `json:"options"`
}

// SlopeResponse carries Sen's slope of a series
type SlopeResponse struct {
	Slope float64 `json:"slope"`
	N     int     `json:"n"`
}

// CacheResponse reports the trend cache after a read or a clear
type CacheResponse struct {
	Cache   trend.CacheStats `json:"cache"`
	Cleared bool             `json:"cleared,omitempty"`
}
