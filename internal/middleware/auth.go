package middleware

import (
	"strings"

	"github.com/787516/Matrimonial/internal/security"
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "user_id"
	genderKey = "gender"
)

// Auth validates the bearer token and stores the caller in the context
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Unauthorized(c, "invalid authorization header")
			return
		}

		claims, err := security.ValidateJWT(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(genderKey, claims.Gender)
		c.Next()
	}
}

// GetUserID returns the authenticated caller
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
