package services

import "errors"

// Workbook errors
var (
	ErrInsufficientSamples = errors.New("workbook has too few samples for a trend test")
	ErrNoSeries            = errors.New("no well and component series qualifies for a trend test")
)
