// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Backend errors.
	ErrEmptyResponse    = errors.New("empty response from backend")
	ErrGenerationHalted = errors.New("generation stopped")

	// Configuration errors.
	ErrMissingCredential = errors.New("API key is not set")
	ErrInvalidConfig     = errors.New("invalid configuration")

	// Storage errors.
	ErrNotFound = errors.New("not found")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ConfigurationError is raised before any network attempt when the backend
// cannot be called at all. It is never retried.
type ConfigurationError struct {
	Err     error
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TransportError is an HTTP or network failure talking to the backend.
// Status is zero when no response was received.
type TransportError struct {
	Err    error
	Body   string
	Status int
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("API error %d: %s", e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	default:
		return "request failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the status warrants another attempt. Status 0
// means the request failed before any response arrived, so it is retried
// like a server error.
func (e *TransportError) Retryable() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// MalformedResponseError means the response text could not be turned into the
// shape a stage expects.
type MalformedResponseError struct {
	Stage string
	Raw   string
}

const maxRawInError = 2000

func (e *MalformedResponseError) Error() string {
	raw := e.Raw
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError] + "..."
	}
	return fmt.Sprintf("%s: parsing failed. Raw response:\n%s", e.Stage, raw)
}

// EmptyResultError means a stage that must produce results produced none.
type EmptyResultError struct {
	Stage   string
	Message string
}

func (e *EmptyResultError) Error() string {
	return e.Message
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// A canceled call is the caller asking us to stop.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrGenerationHalted) {
		return true
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable()
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
