package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// Context keys set by JWTMiddleware.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// JWTMiddleware authenticates requests with a bearer JWT. Repeated failures
// from one IP are throttled.
type JWTMiddleware struct {
	jwt         *utils.JWTManager
	rateLimiter *InvalidAuthRateLimiter
	allowQuery  bool
}

// NewJWTMiddleware constructs a JWTMiddleware.
func NewJWTMiddleware(jwt *utils.JWTManager, rateLimiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{jwt: jwt, rateLimiter: rateLimiter}
}

// WithQueryToken returns a copy that also accepts the token in the
// access_token query parameter. EventSource clients cannot set headers.
func (m *JWTMiddleware) WithQueryToken() *JWTMiddleware {
	cp := *m
	cp.allowQuery = true
	return &cp
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			m.handleAuthError(c, "UNAUTHORIZED", "Missing or invalid authorization header")
			return
		}

		claims, err := m.jwt.ValidateJWT(token)
		if err != nil {
			m.handleAuthError(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func (m *JWTMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	if m.allowQuery {
		return c.Query("access_token")
	}
	return ""
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, code, message string) {
	if m.rateLimiter != nil && !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}

	utils.Error(c, http.StatusUnauthorized, code, message)
	c.Abort()
}
