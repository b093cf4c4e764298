package middleware

import (
	"errors"
	"net/http"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error, unless the
// handler already wrote a body. Server-side failures are logged with the
// request id; their details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		code, message := response.Status(err)

		if code >= http.StatusInternalServerError {
			cause := err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Err != nil {
				cause = appErr.Err
			}
			logger.Log.Error("request failed",
				"request_id", response.RequestID(c),
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", code,
				"error", cause,
			)
		}

		if c.Writer.Written() {
			return
		}
		response.Error(c, code, message)
	}
}
