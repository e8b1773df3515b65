package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrAssayNotFound  = fmt.Errorf("%w: assay", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Comparison errors
	ErrInvalidGroupCount     = errors.New("invalid group count")
	ErrInsufficientData      = errors.New("insufficient data for analysis")
	ErrUnsupportedTest       = errors.New("unsupported statistical test")
	ErrDependencyUnavailable = errors.New("statistical dependency unavailable")

	// Input errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingParameters = errors.New("parameters not found in file")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: validation failed for %s: %s", ErrInvalidInput, field, reason)
}

func NewInvalidGroupCountError(count int) error {
	return fmt.Errorf("%w: need at least 2 groups with observations, got %d", ErrInvalidGroupCount, count)
}

func NewInsufficientDataError(group string, n, required int, test string) error {
	return fmt.Errorf("%w: group %q has %d valid observations, %s requires at least %d",
		ErrInsufficientData, group, n, test, required)
}

func NewUnsupportedTestError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedTest, name)
}

func NewDependencyUnavailableError(dependency, purpose string) error {
	return fmt.Errorf("%w: %s is required for %s", ErrDependencyUnavailable, dependency, purpose)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsComparisonError reports whether err came out of the comparison engine's
// input contract rather than from I/O.
func IsComparisonError(err error) bool {
	return errors.Is(err, ErrInvalidGroupCount) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnsupportedTest) ||
		errors.Is(err, ErrColumnNotFound)
}

func IsValidationError(err error) bool {
	return IsComparisonError(err) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMissingParameters)
}
