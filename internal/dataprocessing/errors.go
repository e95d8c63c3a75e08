package dataprocessing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for files that are not Excel workbooks
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	// ErrFileTooLarge is returned when a workbook exceeds the configured size limit
	ErrFileTooLarge = errors.New("workbook exceeds maximum size")
	// ErrInvalidWorkbook is returned when the sheet layout or its values cannot be used
	ErrInvalidWorkbook = errors.New("invalid workbook")
)

// InvalidValueError reports a cell that is neither a number nor a recognized marker
type InvalidValueError struct {
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("cannot interpret %q as a number", e.Value)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// InvalidValuesError lists every offending value of a workbook grouped by component
type InvalidValuesError struct {
	Components map[string][]string `json:"components"`
}

func (e *InvalidValuesError) Error() string {
	names := make([]string, 0, len(e.Components))
	for name := range e.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Components[name], ", ")))
	}
	return "workbook contains values that are not numbers or ND markers (" + strings.Join(parts, "; ") + ")"
}

// Unwrap lets callers match the error against ErrInvalidWorkbook
func (e *InvalidValuesError) Unwrap() error {
	return ErrInvalidWorkbook
}

func (e *InvalidValuesError) add(component, value string) {
	if e.Components == nil {
		e.Components = make(map[string][]string)
	}
	e.Components[component] = append(e.Components[component], value)
}

func (e *InvalidValuesError) empty() bool {
	return len(e.Components) == 0
}
