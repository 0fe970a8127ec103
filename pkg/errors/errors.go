// Package errors provides structured error types for stackflex.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engines, the CLI and the API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - UNKNOWN_*: References to things the engine does not know about
//   - NOT_FOUND_*: Resource not found
//   - NETWORK_*: Network-related errors (remote caches)
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownAttribute, "could not set attribute %q (%s)", name, setter)
//	if errors.Is(err, errors.ErrCodeUnknownAttribute) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSolverFailed, origErr, "compute layout for %d nodes", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidAlgorithm  Code = "INVALID_ALGORITHM"
	ErrCodeInvalidOption     Code = "INVALID_OPTION"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidKey        Code = "INVALID_KEY"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Graph structure errors
	ErrCodeDuplicateKey      Code = "DUPLICATE_KEY"
	ErrCodeAddressCollision  Code = "ADDRESS_COLLISION"
	ErrCodeUnknownNode       Code = "UNKNOWN_NODE"
	ErrCodeUnknownAttribute  Code = "UNKNOWN_ATTRIBUTE"
	ErrCodeInvalidAttribute  Code = "INVALID_ATTRIBUTE"
	ErrCodeSolverFailed      Code = "SOLVER_FAILED"
	ErrCodeEngineNotPrepared Code = "ENGINE_NOT_PREPARED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether err was caused by bad input rather than by
// the engine or its collaborators. The HTTP API maps these to 4xx responses.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidAlgorithm, ErrCodeInvalidOption,
		ErrCodeInvalidDimensions, ErrCodeInvalidKey, ErrCodeInvalidPath,
		ErrCodeDuplicateKey, ErrCodeAddressCollision, ErrCodeUnknownNode,
		ErrCodeUnknownAttribute, ErrCodeInvalidAttribute:
		return true
	}
	return false
}
