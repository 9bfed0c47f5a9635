// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrNotFound indicates a referenced entity does not exist or does not
	// belong to the caller.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the caller identity could not be resolved.
	ErrUnauthorized = errors.New("unauthorized: no resolvable user identity")
	// ErrUnsupportedFormat indicates an unknown statement file format tag.
	ErrUnsupportedFormat = errors.New("unsupported statement format")
)

// ValidationError represents a business-rule violation. It is reported
// synchronously to the caller and never accompanies a partial write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a human-readable message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a business-rule violation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// MalformedInputError wraps a statement parser failure, preserving the
// underlying decoder diagnostic.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed statement file: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// NewMalformedInputError wraps err as a malformed-input failure.
func NewMalformedInputError(err error) error {
	return &MalformedInputError{Err: err}
}
