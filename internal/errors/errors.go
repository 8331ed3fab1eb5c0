package errors

import (
	"fmt"
)

// Error is the structured error type for cascade.
// It provides context for error handling, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_401_EMPTY_QUERY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Index, Service, Query).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Recoverable indicates the pipeline handles this locally
	// (pass-through or rebuild) instead of failing the query.
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category, severity, and the recoverable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:        code,
		Message:     message,
		Category:    categoryFromCode(code),
		Severity:    severityFromCode(code),
		Cause:       cause,
		Recoverable: isRecoverableCode(code),
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration error. Fails fast before any stage runs.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IndexUnavailable creates an index/cache availability error.
// Triggers a full rebuild rather than surfacing to the caller.
func IndexUnavailable(message string, cause error) *Error {
	return New(ErrCodeIndexUnavailable, message, cause)
}

// ExternalServiceError creates an external scoring service error.
// Recovered locally via the stage pass-through fallback.
func ExternalServiceError(message string, cause error) *Error {
	return New(ErrCodeExternalService, message, cause)
}

// EmptyQueryError creates the typed failure for queries that
// tokenize to zero tokens.
func EmptyQueryError(query string) *Error {
	return New(ErrCodeEmptyQuery, "query produced no tokens", nil).
		WithDetail("query", query)
}

// RetrievalError creates the fatal per-query error for Stage 1 failures.
func RetrievalError(message string, cause error) *Error {
	return New(ErrCodeRetrieval, message, cause)
}

// IsRecoverable checks if an error is handled locally by the pipeline.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(*Error); ok {
		return ce.Recoverable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current query.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(*Error); ok {
		return ce.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an Error.
// Returns empty string if not an Error.
func GetCode(err error) string {
	if ce, ok := err.(*Error); ok {
		return ce.Code
	}
	return ""
}
