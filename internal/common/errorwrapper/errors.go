package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidConfiguration indicates configuration issues that are fatal
	// before any file is scanned
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrFileRead indicates a single file's content was unavailable; callers
	// record it and skip the file
	ErrFileRead = errors.New("file read failed")
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// NewConfigurationError creates a fatal configuration error. Scans never
// start when one of these is returned.
func NewConfigurationError(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, message)
}

// NewFileReadError wraps a per-file read failure. These become failure
// records in the scan result rather than aborting the run.
func NewFileReadError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileRead, path, err)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
