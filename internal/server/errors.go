package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent over HTTP
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Common error codes
const (
	// ErrorCodeInvalidRequest indicates the client sent an invalid request
	ErrorCodeInvalidRequest = "INVALID_REQUEST"

	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError = "INTERNAL_ERROR"

	// ErrorCodeAuthenticationError indicates an authentication failure
	ErrorCodeAuthenticationError = "AUTHENTICATION_ERROR"

	// ErrorCodeResourceNotFound indicates a requested resource was not found
	ErrorCodeResourceNotFound = "RESOURCE_NOT_FOUND"

	// ErrorCodeBadGateway indicates a failure in the Teamwork API
	ErrorCodeBadGateway = "BAD_GATEWAY"
)

// writeErrorResponse writes a structured error response to the HTTP response writer
func writeErrorResponse(w http.ResponseWriter, status int, code, message string, err error) {
	errResp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}

		logErr := errortypes.APIError(err, fmt.Sprintf("HTTP Error (%s)", code)).
			WithField("status_code", status).
			WithField("error_code", code).
			WithField("client_message", message)
		errortypes.LogError(nil, logErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HandleBadRequest handles 400 Bad Request errors
func HandleBadRequest(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadRequest, ErrorCodeInvalidRequest, message, err)
}

// HandleUnauthorized handles 401 Unauthorized errors
func HandleUnauthorized(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusUnauthorized, ErrorCodeAuthenticationError, message, err)
}

// HandleNotFound handles 404 Not Found errors
func HandleNotFound(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusNotFound, ErrorCodeResourceNotFound, message, err)
}

// HandleInternalError handles 500 Internal Server Error errors
func HandleInternalError(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusInternalServerError, ErrorCodeInternalError, message, err)
}

// HandleBadGateway handles 502 Bad Gateway errors
func HandleBadGateway(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadGateway, ErrorCodeBadGateway, message, err)
}

// HandleError maps an error to the appropriate HTTP response by inspecting
// its type.
func HandleError(w http.ResponseWriter, err error) {
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case errortypes.ErrorTypeValidation:
			HandleBadRequest(w, "Invalid request parameters", err)
			return
		case errortypes.ErrorTypeAuth, errortypes.ErrorTypePermission:
			HandleUnauthorized(w, "Authentication required", err)
			return
		case errortypes.ErrorTypeNetwork:
			HandleBadGateway(w, "Network error", err)
			return
		case errortypes.ErrorTypeAPI, errortypes.ErrorTypeExternal:
			HandleBadGateway(w, "Teamwork API error", err)
			return
		case errortypes.ErrorTypeConfig, errortypes.ErrorTypeInternal:
			HandleInternalError(w, "An unexpected error occurred", err)
			return
		}
	}

	HandleInternalError(w, "An unexpected error occurred", err)
}
