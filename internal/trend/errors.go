package trend

import "errors"

var (
	// ErrInvalidInput is returned for nil, too short or non-finite series and bad options
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData is returned when a seasonal test has fewer than two full cycles
	ErrInsufficientData = errors.New("insufficient data")
)
