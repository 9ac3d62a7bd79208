// Package apperr defines the error taxonomy shared by the upstream adapter,
// the employee directory and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBadRequest is returned when the caller supplied a malformed identifier or body.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound is returned when a resource is absent or a derived view is empty.
	ErrNotFound = errors.New("not found")
)

// ExternalServiceError carries the status and message of a failed upstream call.
type ExternalServiceError struct {
	StatusCode int
	Message    string
}

// NewExternalServiceError creates an ExternalServiceError with the given status and message.
func NewExternalServiceError(statusCode int, message string) *ExternalServiceError {
	return &ExternalServiceError{StatusCode: statusCode, Message: message}
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service error: status=%d message=%s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status that should be surfaced to callers.
// Upstream error statuses pass through; everything else becomes 502.
func (e *ExternalServiceError) HTTPStatus() int {
	if e.StatusCode >= http.StatusBadRequest && e.StatusCode <= 599 {
		return e.StatusCode
	}

	return http.StatusBadGateway
}
