// errors.go defines the error taxonomy shared by all provider implementations.
package scm

import "errors"

var (
	// Input errors
	ErrInvalidIdentifier  = errors.New("invalid repository identifier, expected owner/name")
	ErrInvalidStateFilter = errors.New("invalid pull request state filter")

	// Upstream errors
	ErrNotFound = errors.New("resource not found")
	ErrInternal = errors.New("provider request failed")

	// Configuration errors
	ErrInvalidProviderType  = errors.New("invalid SCM provider type")
	ErrProviderNotSupported = errors.New("SCM provider not supported")
)

// APIError represents an unexpected failure talking to the SCM provider API: a non-success
// status, a transport error or a response that does not match the expected shape.
// Every APIError satisfies errors.Is(err, ErrInternal).
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInternal.
func (e *APIError) Is(target error) bool {
	return target == ErrInternal
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, message string, err error) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// WrapRemoteError is shorthand used by provider clients for failed upstream calls
func WrapRemoteError(status int, reason string, err error) *APIError {
	return NewAPIError(status, reason, err)
}
