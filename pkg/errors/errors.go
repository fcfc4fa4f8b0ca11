// Package errors provides the error types the verification pipeline
// reports through: unreadable workbooks, filesystem failures and invalid
// calibration input. Typed errors keep per-file failures from aborting a
// batch; everything recoverable inside extraction surfaces as an issue
// instead of an error.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the verification system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadFailed indicates a workbook could not be opened or parsed
	ErrReadFailed = errors.New("read failed")

	// ErrUnsupportedFormat indicates a workbook in a format this system cannot read
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ReadError represents a workbook that could not be opened or parsed.
// The file is excluded from all downstream joins; processing continues.
type ReadError struct {
	Path   string
	Format string // "xlsx", "xls"
	Err    error
}

// Error implements the error interface
func (e *ReadError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to read %s workbook %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to read workbook %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ReadError) Is(target error) bool {
	return target == ErrReadFailed
}

// NewReadError creates a new ReadError
func NewReadError(path, format string, err error) *ReadError {
	return &ReadError{Path: path, Format: format, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "scan"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// IsReadError checks if an error is a workbook read error
func IsReadError(err error) bool {
	return errors.Is(err, ErrReadFailed)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapRead wraps an error as a ReadError
func WrapRead(path, format string, err error) error {
	if err == nil {
		return nil
	}
	return NewReadError(path, format, err)
}
