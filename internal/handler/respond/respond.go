// Package respond writes the JSON envelope shared by every endpoint.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Stable error codes. Clients branch on these, never on messages.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeInvalidPassword  = "INVALID_CREDENTIALS"
	CodeEmailTaken       = "EMAIL_TAKEN"
	CodeOrderNotFound    = "ORDER_NOT_FOUND"
	CodeOrderNotDue      = "ORDER_NOT_DUE"
	CodeAlreadyFulfilled = "ORDER_ALREADY_FULFILLED"
	CodeOrderCompleted   = "ORDER_COMPLETED"
	CodeNotImplemented   = "NOT_IMPLEMENTED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data, RequestID: RequestID(w, r)})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	write(w, status, Envelope{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		RequestID: RequestID(w, r),
	})
}

// Internal logs err and answers 500 without leaking details.
func Internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	Error(w, r, http.StatusInternalServerError, CodeInternal, "internal error")
}

// RequestID echoes X-Request-ID or assigns a new one.
func RequestID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = middleware.GetReqID(r.Context())
	}
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	return id
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("encode response", "error", err)
	}
}
