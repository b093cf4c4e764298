package response

import (
	"errors"
	"net/http"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success   *bool  `json:"success,omitempty"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// MessageResponse is returned by operations without a resource body
type MessageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

// JSON sends data as is
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// Message sends {"message": ...}
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, MessageResponse{Message: message})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		Error:     message,
		RequestID: RequestID(c),
	})
}

// AuthError sends an error response carrying success=false, the shape auth clients expect
func AuthError(c *gin.Context, code int, message string) {
	failed := false
	c.JSON(code, ErrorResponse{
		Success:   &failed,
		Error:     message,
		RequestID: RequestID(c),
	})
}

// Status maps err to the HTTP status and client-safe message.
// Anything that is not an AppError is reported as a generic 500.
func Status(err error) (int, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// RequestID returns the id assigned by the request id middleware
func RequestID(c *gin.Context) string {
	return c.GetString(string(domain.KeyRequestID))
}
