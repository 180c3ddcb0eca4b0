package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dpetrov/elevator-cab/internal/constants"
	"github.com/dpetrov/elevator-cab/internal/domain"
)

// APIResponse is the envelope every JSON response from this process uses,
// success or failure, so a client never has to branch on shape.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *APIMeta    `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Details     string `json:"details,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	UserMessage string `json:"user_message,omitempty"`
}

type APIMeta struct {
	RequestID string `json:"request_id,omitempty"`
	Version   string `json:"version,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// ResponseWriter wraps http.ResponseWriter so handlers write through the
// APIResponse envelope instead of touching the wire format directly.
type ResponseWriter struct {
	http.ResponseWriter
	logger    *slog.Logger
	requestID string
	startTime time.Time
}

func NewResponseWriter(w http.ResponseWriter, logger *slog.Logger, requestID string) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		logger:         logger,
		requestID:      requestID,
		startTime:      time.Now(),
	}
}

func (rw *ResponseWriter) WriteJSON(statusCode int, data interface{}) {
	response := APIResponse{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
		Meta: &APIMeta{
			RequestID: rw.requestID,
			Version:   "v1",
			Duration:  time.Since(rw.startTime).String(),
		},
	}

	rw.Header().Set("Content-Type", constants.ContentTypeJSON)
	rw.Header().Set("X-Request-ID", rw.requestID)

	encoded, err := json.Marshal(response)
	if err != nil {
		rw.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()),
			slog.String("request_id", rw.requestID))
		rw.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := rw.Write([]byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"},"timestamp":"` + time.Now().Format(time.RFC3339) + `"}`)); writeErr != nil {
			rw.logger.Error("failed to write error response", slog.String("error", writeErr.Error()))
		}
		return
	}

	rw.WriteHeader(statusCode)
	if _, writeErr := rw.Write(encoded); writeErr != nil {
		rw.logger.Error("failed to write JSON response", slog.String("error", writeErr.Error()))
	}
}

func (rw *ResponseWriter) WriteError(statusCode int, errorCode, message, details string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:        errorCode,
			Message:     message,
			Details:     details,
			RequestID:   rw.requestID,
			UserMessage: getUserFriendlyMessage(errorCode),
		},
		Timestamp: time.Now(),
		Meta: &APIMeta{
			RequestID: rw.requestID,
			Version:   "v1",
			Duration:  time.Since(rw.startTime).String(),
		},
	}

	rw.Header().Set("Content-Type", constants.ContentTypeJSON)
	rw.Header().Set("X-Request-ID", rw.requestID)
	rw.WriteHeader(statusCode)

	if err := json.NewEncoder(rw).Encode(response); err != nil {
		rw.logger.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}

// WriteDomainError maps a domain.DomainError to the matching HTTP status.
func (rw *ResponseWriter) WriteDomainError(err error) {
	statusCode := http.StatusInternalServerError
	errorCode := ErrorCodeInternal
	message := "Internal server error"
	details := err.Error()

	if domainErr, ok := err.(*domain.DomainError); ok {
		switch domainErr.Type {
		case domain.ErrTypeValidation:
			statusCode = http.StatusBadRequest
			errorCode = ErrorCodeValidation
			message = "Invalid input provided"
		case domain.ErrTypeNotFound:
			statusCode = http.StatusNotFound
			errorCode = ErrorCodeNotFound
			message = "Resource not found"
		case domain.ErrTypeConflict:
			statusCode = http.StatusConflict
			errorCode = ErrorCodeConflict
			message = "Resource conflict"
		}
	}

	rw.WriteError(statusCode, errorCode, message, details)
}

func getUserFriendlyMessage(errorCode string) string {
	messages := map[string]string{
		ErrorCodeValidation:       "Please check your input and try again.",
		ErrorCodeNotFound:         "The requested resource was not found.",
		ErrorCodeConflict:         "The requested operation conflicts with existing data.",
		ErrorCodeInternal:         "Something went wrong on our end. Please try again later.",
		ErrorCodeMethodNotAllowed: "This HTTP method is not supported for this endpoint.",
		ErrorCodeInvalidJSON:      "The provided JSON is malformed.",
		ErrorCodeRateLimit:        "Too many requests. Please slow down.",
	}
	if msg, ok := messages[errorCode]; ok {
		return msg
	}
	return "An error occurred while processing your request."
}

const (
	ErrorCodeValidation       = "VALIDATION_ERROR"
	ErrorCodeNotFound         = "NOT_FOUND"
	ErrorCodeConflict         = "CONFLICT"
	ErrorCodeInternal         = "INTERNAL_ERROR"
	ErrorCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrorCodeInvalidJSON      = "INVALID_JSON"
	ErrorCodeRateLimit        = "RATE_LIMITED"
)

// writeJSONBody encodes v directly, bypassing the APIResponse envelope —
// used by the probe endpoints, whose consumers (orchestrators) expect a
// bare health payload rather than the dispatcher-facing response shape.
func writeJSONBody(w http.ResponseWriter, logger *slog.Logger, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response body", slog.String("error", err.Error()))
	}
}
