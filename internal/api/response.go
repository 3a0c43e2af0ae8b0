package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeNotSupported     = "NOT_SUPPORTED"
	ErrCodeExternalAPIError = "EXTERNAL_API_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: GetRequestID(r.Context()),
			Timestamp: time.Now(),
		},
	}

	event := log.Warn()
	if status >= 500 {
		event = log.Error()
	}
	event.
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("error_message", message).
		Str("details", details).
		Int("status", status).
		Msg("API error response")

	writeJSON(w, status, resp)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, message, "")
}

// NotFound sends a 404 Not Found error
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusNotFound, ErrCodeNotFound, message, "")
}

// NotSupported sends a 501 for operations the configured provider lacks
func NotSupported(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusNotImplemented, ErrCodeNotSupported, "Operation not supported by provider", err.Error())
}

// ExternalAPIError sends a 502 for a failed upstream provider call
func ExternalAPIError(w http.ResponseWriter, r *http.Request, provider string, err error) {
	message := "External service error"
	if provider != "" {
		message = provider + " service error"
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	writeError(w, r, http.StatusBadGateway, ErrCodeExternalAPIError, message, details)
}

// InternalError sends a 500 Internal Server Error
func InternalError(w http.ResponseWriter, r *http.Request, details string) {
	writeError(w, r, http.StatusInternalServerError, ErrCodeInternalServer, "An unexpected error occurred", details)
}
