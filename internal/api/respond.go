package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/iris/internal/apperr"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

const (
	codeBadRequest       = "BAD_REQUEST"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeTooLarge         = "PAYLOAD_TOO_LARGE"
	codeExternalService  = "EXTERNAL_SERVICE_ERROR"
	codeCanceled         = "REQUEST_CANCELED"
	codeInternal         = "INTERNAL"
)

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, status int, text string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(text))

	return err
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) error {
	envelope := ErrorEnvelope{Code: code, Message: message}
	if requestID := RequestIDFrom(r.Context()); requestID != "" {
		envelope.Meta = map[string]string{"request_id": requestID}
	}

	return writeJSON(w, status, envelope)
}

// statusFor maps an error returned by the directory to an HTTP status, an error code and a public message.
func statusFor(err error) (int, string, string) {
	var extErr *apperr.ExternalServiceError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest, err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, codeTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
	case errors.As(err, &extErr):
		return extErr.HTTPStatus(), codeExternalService, extErr.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeCanceled, "request canceled before the upstream answered"
	default:
		return http.StatusInternalServerError, codeInternal, "internal error"
	}
}
