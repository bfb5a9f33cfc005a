package common

import (
	"fmt"
	"net/http"
)

// AppError is the application error type carried from services to handlers.
// It pairs a machine-readable code with the HTTP status the handler should
// answer with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{Code: "bad_request", Message: message, Status: http.StatusBadRequest, Err: err}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: "not_found", Message: message, Status: http.StatusNotFound}
}

// NewConflictError creates a 409 error
func NewConflictError(message string) *AppError {
	return &AppError{Code: "conflict", Message: message, Status: http.StatusConflict}
}

// NewInternalError creates a 500 error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Code: "internal", Message: message, Status: http.StatusInternalServerError, Err: err}
}

// NewUnavailableError creates a 503 error
func NewUnavailableError(message string, err error) *AppError {
	return &AppError{Code: "unavailable", Message: message, Status: http.StatusServiceUnavailable, Err: err}
}
