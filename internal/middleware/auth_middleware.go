package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// RequireRole rejects authenticated users whose role is not listed.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[GetRole(c)] {
			utils.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient role for this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id, or 0.
func GetUserID(c *gin.Context) int {
	return c.GetInt(ContextUserID)
}

// GetRole returns the authenticated user's role, or "".
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}
