// Package errors defines coded errors for API operations. Handlers return
// these so the router can map failures to HTTP statuses without string
// matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an API error.
type Code string

const (
	// CodeInvalidArgument indicates invalid input parameters.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNotFound indicates the requested entity does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeFailedPrecondition indicates the operation needs a feature that is
	// not configured, such as AI or Canvas sync.
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	// CodeUnavailable indicates an upstream dependency failed.
	CodeUnavailable Code = "UNAVAILABLE"
	// CodeInternal indicates an unexpected server-side failure.
	CodeInternal Code = "INTERNAL"
)

// APIError is a coded error with an optional cause.
type APIError struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to an HTTP status.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeFailedPrecondition:
		return http.StatusServiceUnavailable
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(format string, args ...any) *APIError {
	return &APIError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) *APIError {
	return &APIError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// FailedPrecondition creates a failed precondition error.
func FailedPrecondition(msg string) *APIError {
	return &APIError{Code: CodeFailedPrecondition, Message: msg}
}

// Unavailable creates an unavailable error wrapping the upstream cause.
func Unavailable(msg string, cause error) *APIError {
	return &APIError{Code: CodeUnavailable, Message: msg, Cause: cause}
}

// Internal creates an internal error wrapping the cause.
func Internal(msg string, cause error) *APIError {
	return &APIError{Code: CodeInternal, Message: msg, Cause: cause}
}

// CodeOf extracts the code from any error. Non-coded errors are INTERNAL.
func CodeOf(err error) Code {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}

// HTTPStatus extracts the HTTP status from any error. Non-coded errors map
// to 500.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show a client. Internal causes
// stay in the server log.
func PublicMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "internal server error"
}
