package types

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RelayError is the error kind surfaced by handlers and the upstream relay.
// It carries the HTTP status that the boundary adapter renders; upstream
// failures keep the upstream's own status code.
type RelayError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	return e.Message
}

// NewRelayError creates a RelayError with an explicit status.
func NewRelayError(status int, message string) *RelayError {
	return &RelayError{Status: status, Message: message}
}

// BadRequest creates a 400 error for malformed or missing required fields.
func BadRequest(message string) *RelayError {
	return NewRelayError(http.StatusBadRequest, message)
}

// Unauthorized creates a 401 error for a missing or empty bearer token.
func Unauthorized(message string) *RelayError {
	return NewRelayError(http.StatusUnauthorized, message)
}

// NotFound creates a 404 error for unmatched routes or unknown resources.
func NotFound(message string) *RelayError {
	return NewRelayError(http.StatusNotFound, message)
}

// MethodNotAllowed creates a 405 error for a wrong method on a known path.
func MethodNotAllowed(message string) *RelayError {
	return NewRelayError(http.StatusMethodNotAllowed, message)
}

// Internal creates a 500 error for unexpected failures.
func Internal(message string) *RelayError {
	return NewRelayError(http.StatusInternalServerError, message)
}

// Upstream creates an error mirroring a non-2xx upstream response.
func Upstream(status int, message string) *RelayError {
	return NewRelayError(status, message)
}

// APIError represents an OpenAI-compatible error response body.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Code    *string `json:"code,omitempty"`
}

// Error type constants
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypeServer         = "server_error"
)

// errorType maps an HTTP status to the envelope's type field.
func errorType(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorTypeAuthentication
	case status == http.StatusNotFound:
		return ErrorTypeNotFound
	case status == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case status >= 500:
		return ErrorTypeServer
	default:
		return ErrorTypeInvalidRequest
	}
}

// corsHeaders is the uniform cross-origin header set attached to every
// response, success or failure.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Authorization, Content-Type, X-Request-ID",
}

// SetCORS merges the permissive CORS headers into h, overriding whatever
// values may already be present.
func SetCORS(h http.Header) {
	for k, v := range corsHeaders {
		h.Set(k, v)
	}
}

// WriteError is the boundary adapter: it converts any error into the wire
// response. A *RelayError keeps its status; everything else becomes a 500.
// The message is the error's own message, never a stack trace.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var re *RelayError
	if errors.As(err, &re) {
		if re.Status != 0 {
			status = re.Status
		}
		message = re.Message
	}

	SetCORS(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&APIError{
		Error: ErrorDetail{Message: message, Type: errorType(status)},
	})
}
