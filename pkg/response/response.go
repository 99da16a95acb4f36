package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	customError "lendbook/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding JSON response failed", "error", err)
	}
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// NoContent sends an empty success response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, code, message string, err error) {
	response := ErrorResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}

	if err != nil {
		response.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		slog.Error("encoding error response failed", "error", encodeErr)
	}
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, customError.ErrCodeValidation, message, err)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, customError.ErrCodeUnauthenticated, message, nil)
}

// statusByCode maps business error codes to HTTP statuses.
var statusByCode = map[string]int{
	customError.ErrCodeValidation:      http.StatusBadRequest,
	customError.ErrCodeMemberNotFound:  http.StatusNotFound,
	customError.ErrCodeInsufficientDue: http.StatusUnprocessableEntity,
	customError.ErrCodeHasTransactions: http.StatusConflict,
	customError.ErrCodeUnauthenticated: http.StatusUnauthorized,
	customError.ErrCodeEmailTaken:      http.StatusConflict,
	customError.ErrCodeBadCredentials:  http.StatusUnauthorized,
	customError.ErrCodePersistence:     http.StatusBadGateway,
}

// FromError maps a service error onto the HTTP status for its business code
// and sends it.
func FromError(w http.ResponseWriter, err error) {
	code := customError.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	Error(w, status, code, "", err)
}
