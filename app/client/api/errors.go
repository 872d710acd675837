package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNetwork      = errors.New("network error")
	ErrAPI          = errors.New("api error")
)

const (
	MsgUnknownAPIError = "Unknown API error"
	MsgErrorInResponse = "Error in response"
	MsgUnauthorized    = "Unauthorized. Please login again."
	MsgForbidden       = "You do not have permission to perform this action."
	MsgNotFound        = "The requested resource was not found."
	MsgValidation      = "Validation failed. Please check your input."
	MsgServerError     = "Server error. Please try again later."
	MsgUnavailable     = "Service temporarily unavailable. Please try again later."
	MsgNetwork         = "Network error. Please check your internet connection."
)

// StatusMessage is the user facing message for an HTTP status without a
// server-provided one.
func StatusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return MsgUnauthorized
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusUnprocessableEntity:
		return MsgValidation
	case http.StatusInternalServerError:
		return MsgServerError
	case http.StatusServiceUnavailable:
		return MsgUnavailable
	default:
		return MsgUnknownAPIError
	}
}

func newError(sentinel error, statusCode int, message string, fields map[string][]string) error {
	builder := oops.
		With("status_code", statusCode).
		Public(message)
	if len(fields) > 0 {
		builder = builder.With("fields", fields)
	}

	return builder.Errorf("%w: %s", sentinel, message)
}

func networkError(method, path string, cause error) error {
	return oops.
		With("method", method).
		With("path", path).
		Public(MsgNetwork).
		Errorf("%w: %s %s: %w", ErrNetwork, method, path, cause)
}

// StatusCode extracts the status recorded on an API error, 0 if none.
func StatusCode(err error) int {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return 0
	}

	statusCode, _ := oopsErr.Context()["status_code"].(int)

	return statusCode
}

// Message returns the message to show to a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	return oops.GetPublic(err, MsgUnknownAPIError)
}

// FieldErrors returns per-field validation messages attached to err.
func FieldErrors(err error) map[string][]string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	fields, _ := oopsErr.Context()["fields"].(map[string][]string)

	return fields
}

// Describe renders the message and any field errors on separate lines.
func Describe(err error) string {
	result := Message(err)
	for field, messages := range FieldErrors(err) {
		for _, msg := range messages {
			result += fmt.Sprintf("\n  %s: %s", field, msg)
		}
	}

	return result
}
