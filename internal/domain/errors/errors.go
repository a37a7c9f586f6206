// Package errors provides domain-specific error types.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for domain errors.
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// ErrExhaustedRetries is matched by every error produced after a retry budget ran out.
var ErrExhaustedRetries = errors.New("exhausted retries")

// ErrNotConnected is returned when the document database connection has not been established.
var ErrNotConnected = errors.New("document database not connected")

// DomainError represents a domain-specific error.
type DomainError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeValidation,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ConnectionError is returned when the document database could not be reached
// within the connect retry budget, or when the caller gave up first (Canceled).
type ConnectionError struct {
	Attempts int
	Canceled bool
	Err      error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Canceled {
		return fmt.Sprintf("connect to document database interrupted after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("failed to connect to document database after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports ErrExhaustedRetries as a match unless the attempts were interrupted.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrExhaustedRetries && !e.Canceled
}

// FetchError is returned when a collection could not be read within the fetch retry budget.
type FetchError struct {
	Collection string
	Attempts   int
	Canceled   bool
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Canceled {
		return fmt.Sprintf("fetch of collection '%s' interrupted after %d attempts: %v", e.Collection, e.Attempts, e.Err)
	}
	return fmt.Sprintf("failed to fetch collection '%s' after %d attempts: %v", e.Collection, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrExhaustedRetries as a match unless the attempts were interrupted.
func (e *FetchError) Is(target error) bool {
	return target == ErrExhaustedRetries && !e.Canceled
}

// GetDomainError extracts the domain error from an error.
func GetDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == ErrCodeValidation
}

// IsConnectionError checks if the error is a connection error.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsFetchError checks if the error is a fetch error.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// Kind returns a short label for logging which stage of a request failed.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConnectionError(err):
		return "connection"
	case IsFetchError(err):
		return "fetch"
	case IsValidationError(err):
		return "validation"
	case errors.Is(err, ErrNotConnected):
		return "connection"
	default:
		return "internal"
	}
}
