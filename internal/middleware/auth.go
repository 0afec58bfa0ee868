package middleware

import (
	"strings"

	"github.com/ejtx16/shrink-iq-web-app/internal/auth"
	"github.com/ejtx16/shrink-iq-web-app/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	return parts[1], true
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header with bearer token is required")
			c.Abort()
			return
		}

		claims, err := tm.Validate(token)
		if err != nil {
			response.Unauthorized(c, "Token is not valid")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// AuthOptional attaches the user when a valid token is present and lets the
// request continue anonymously otherwise. Used on the shorten endpoint so
// anonymous submissions still work.
func AuthOptional(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := tm.Validate(token); err == nil {
				c.Set(userIDKey, claims.UserID)
				c.Set(userEmailKey, claims.Email)
			}
		}
		c.Next()
	}
}

// UserID extracts the authenticated user's id from the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}
