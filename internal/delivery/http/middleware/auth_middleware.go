package middleware

import (
	"net/http"
	"strings"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid session token issued by login.
// The token comes from the Authorization header, or the auth_token cookie.
func AuthMiddleware(tokens *security.TokenManager, secLog *security.SecurityLogger) gin.HandlerFunc {
	if secLog == nil {
		secLog = security.NopSecurityLogger()
	}
	return func(c *gin.Context) {
		var tokenString string

		// 1. Try to get token from Header
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			scheme, token, ok := strings.Cut(authHeader, " ")
			if ok && strings.EqualFold(scheme, "Bearer") {
				tokenString = strings.TrimSpace(token)
			}
		} else if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
			// 2. Try to get token from Cookie
			tokenString = cookie
		}

		if tokenString == "" {
			unauthorized(c, secLog, "missing_token", "Authorization required")
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			unauthorized(c, secLog, "invalid_token", "Invalid token")
			return
		}

		c.Set(string(domain.KeyUserID), claims.Subject)
		c.Set(string(domain.KeyUserEmail), claims.Email)

		c.Next()
	}
}

func unauthorized(c *gin.Context, secLog *security.SecurityLogger, reason, message string) {
	secLog.Log(c.Request.Context(), security.SecurityEvent{
		Event:        security.EventUnauthorizedAccess,
		SubjectType:  "ip",
		SubjectValue: c.ClientIP(),
		IP:           c.ClientIP(),
		RequestID:    response.RequestID(c),
		Reason:       reason,
	})
	response.Error(c, http.StatusUnauthorized, message)
	c.Abort()
}
