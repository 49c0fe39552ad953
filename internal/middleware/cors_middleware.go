package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, Accept, Cache-Control, X-Request-Id"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// normalizeOrigin reduces an origin or configured entry to host[:port].
// Default ports are dropped. Entries without a scheme are taken as hosts.
func normalizeOrigin(raw string) string {
	raw = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(raw), "/"))
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return ""
		}
		raw = u.Host
	}
	raw = strings.TrimSuffix(raw, ":443")
	return strings.TrimSuffix(raw, ":80")
}

// CORSMiddleware allows the dashboard origins in allowedOrigins. Requests
// from other origins get no CORS headers and are left to the browser.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if h := normalizeOrigin(o); h != "" {
			allowed[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := strings.TrimSuffix(c.GetHeader("Origin"), "/")
		if _, ok := allowed[normalizeOrigin(origin)]; ok && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Max-Age", "86400")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
