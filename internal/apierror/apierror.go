// Package apierror holds the domain error kinds shared by services and the
// error envelope written to API clients. Clients only ever see Detail, never
// driver errors or stack traces.
package apierror

import "net/http"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// Status maps a service error onto its HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsBeingUsed(err):
		return http.StatusBadRequest
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Response builds the envelope for err. Internal errors get a generic
// message so driver details stay in the logs.
func Response(err error) (int, *APIError) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		return status, New("internal server error")
	}
	return status, New(err.Error())
}
