// Package types defines the JSON shapes shared across the HTTP surface.
package types

import (
	"encoding/json"
	"net/http"
)

// APIError is the error envelope returned by every endpoint.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// Error type constants
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeConflict       = "conflict_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeExpired        = "expired_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypeUpstream       = "upstream_error"
	ErrorTypeServer         = "server_error"
)

// NewAPIError creates a new API error
func NewAPIError(message, errType string, code int) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
			Code:    code,
		},
	}
}

// WriteError writes an API error as a JSON response
func WriteError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

// Convenience constructors for common cases

func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(message, ErrorTypeInvalidRequest, http.StatusBadRequest)
}

func ErrUnauthorized(message string) *APIError {
	return NewAPIError(message, ErrorTypeAuthentication, http.StatusUnauthorized)
}

func ErrNotFound(message string) *APIError {
	return NewAPIError(message, ErrorTypeNotFound, http.StatusNotFound)
}

func ErrGone(message string) *APIError {
	return NewAPIError(message, ErrorTypeExpired, http.StatusGone)
}

func ErrConflict(message string) *APIError {
	return NewAPIError(message, ErrorTypeConflict, http.StatusConflict)
}

func ErrRateLimit(message string) *APIError {
	return NewAPIError(message, ErrorTypeRateLimit, http.StatusTooManyRequests)
}

func ErrUpstream(message string) *APIError {
	return NewAPIError(message, ErrorTypeUpstream, http.StatusBadGateway)
}

func ErrServer(message string) *APIError {
	return NewAPIError(message, ErrorTypeServer, http.StatusInternalServerError)
}
