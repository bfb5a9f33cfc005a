package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the standard JSON envelope for all endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError is the error payload inside the envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse writes a 200 response with data
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// ErrorResponse writes an error response with the given status and message
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: http.StatusText(status), Message: message},
	})
}

// AppErrorResponse writes an AppError using its own status and code
func AppErrorResponse(c *gin.Context, err *AppError) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: err.Code, Message: err.Message},
	})
}
