package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

const maxBodyBytes = 1 << 20

// SuccessResponse is the envelope for every 2xx body.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Code    internal.ErrorCode `json:"code"`
	Details interface{}        `json:"details,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a raw JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess wraps data in the success envelope
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.WriteJSON(w, status, SuccessResponse{Success: true, Data: data, Message: message})
}

// WriteError writes an error envelope with a generic code derived from status
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	code := internal.ErrCodeInvalidRequest
	switch status {
	case http.StatusUnauthorized:
		code = internal.ErrCodeUnauthenticated
	case http.StatusForbidden:
		code = internal.ErrCodeForbidden
	case http.StatusInternalServerError:
		code = internal.ErrCodeInternal
	}
	h.WriteJSON(w, status, ErrorResponse{Success: false, Error: message, Code: code})
}

// WriteAppError writes the envelope for a typed application error
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	if details, ok := appErr.Details.(internal.LockDetails); ok {
		secs := int(time.Until(details.LockedUntil).Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	message := appErr.GetDetailedMessage()
	if appErr.Type == internal.ErrorTypeInternal {
		message = "Internal server error"
	}

	h.WriteJSON(w, appErr.StatusCode, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// HandleServiceError maps a service error to its HTTP representation. Unknown errors become 500 and are logged with their cause.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("unexpected error", err)
	}

	lg := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		lg.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "code", appErr.Code)
	}

	h.WriteAppError(w, appErr)
}

// ReadJSON decodes a single JSON object from the body, rejecting unknown fields and oversized payloads.
func (h *BaseHandler) ReadJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return internal.NewValidationError("request body must not be empty", internal.ErrCodeInvalidRequest)
		case errors.As(err, &maxErr):
			return internal.NewValidationError("request body is too large", internal.ErrCodeInvalidRequest)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return internal.NewValidationError(fmt.Sprintf("request body contains unknown field %s", field), internal.ErrCodeInvalidRequest)
		default:
			return internal.NewValidationError("request body is not valid JSON", internal.ErrCodeInvalidRequest)
		}
	}

	if dec.More() {
		return internal.NewValidationError("request body must contain a single JSON object", internal.ErrCodeInvalidRequest)
	}
	return nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}

// Pagination reads limit/offset query parameters (default 20, max 100).
func (h *BaseHandler) Pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
