// LOCATION: internal/errors/errors.go
//
// This file provides:
// - Process exit codes
// - Sentinel errors for all error conditions
// - Error category checking functions
// - ExitCode and CodeName mapping
// - Error wrapping utilities

package errors

import (
	"context"
	"errors"
	"fmt"
)

// ============================================================================
// Process exit codes - returned by cmd/sampler
// ============================================================================

const (
	CodeOK                int = 0
	CodeInternal          int = 1
	CodeInvalidConfig     int = 2
	CodeSourceUnavailable int = 3
	CodeMalformedInput    int = 4
	CodeSinkFailed        int = 5
	CodeCanceled          int = 6
)

// CodeName returns a human-readable name for an exit code.
func CodeName(code int) string {
	switch code {
	case CodeOK:
		return "OK"
	case CodeInternal:
		return "Internal"
	case CodeInvalidConfig:
		return "InvalidConfig"
	case CodeSourceUnavailable:
		return "SourceUnavailable"
	case CodeMalformedInput:
		return "MalformedInput"
	case CodeSinkFailed:
		return "SinkFailed"
	case CodeCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Code(%d)", code)
	}
}

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Validation errors
	ErrInvalidInterval   = errors.New("invalid interval")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidTime       = errors.New("invalid timestamp")
	ErrUnknownKind       = errors.New("unknown measurement kind")
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Source errors
	ErrSourceNotFound = errors.New("source unavailable")
	ErrMalformedInput = errors.New("malformed input")

	// Sink errors
	ErrSinkFailed   = errors.New("sink write failed")
	ErrWriterClosed = errors.New("writer is closed")

	// Internal errors
	ErrInternal = errors.New("internal error")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// New is a convenience wrapper for errors.New
var New = errors.New

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrUnsupportedFormat)
}

// IsSourceError returns true if err came from loading readings.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceNotFound) ||
		errors.Is(err, ErrMalformedInput)
}

// IsSinkError returns true if err came from presenting or persisting output.
func IsSinkError(err error) bool {
	return errors.Is(err, ErrSinkFailed) ||
		errors.Is(err, ErrWriterClosed)
}

// ============================================================================
// Error to exit code mapping
// ============================================================================

// ExitCode maps an error to the process exit code.
// Source errors are checked before validation errors so that an unknown
// kind inside an input file reports as malformed input.
func ExitCode(err error) int {
	if err == nil {
		return CodeOK
	}

	switch {
	case Is(err, context.Canceled), Is(err, context.DeadlineExceeded):
		return CodeCanceled
	case Is(err, ErrInternal):
		return CodeInternal
	case Is(err, ErrSourceNotFound):
		return CodeSourceUnavailable
	case Is(err, ErrMalformedInput):
		return CodeMalformedInput
	case IsSinkError(err):
		return CodeSinkFailed
	case IsValidation(err), Is(err, ErrUnknownKind):
		return CodeInvalidConfig
	default:
		return CodeInternal
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// NewSourceNotFound creates a source-unavailable error for path.
func NewSourceNotFound(path string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", path, ErrSourceNotFound)
	}
	return fmt.Errorf("%s: %w: %w", path, ErrSourceNotFound, cause)
}

// NewMalformed creates a malformed-input error for path.
func NewMalformed(path, reason string) error {
	return fmt.Errorf("%s: %s: %w", path, reason, ErrMalformedInput)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
