package middleware

import (
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, reusing a well-formed incoming X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(string(domain.KeyRequestID), id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(security.WithRequestMeta(c.Request.Context(), c.ClientIP(), id))

		c.Next()
	}
}
