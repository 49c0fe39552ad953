package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embire2/DayResellers-sub000/internal/utils"
)

func newRouter(t *testing.T, jwt *utils.JWTManager, limiter *InvalidAuthRateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := NewJWTMiddleware(jwt, limiter)

	r.GET("/me", auth.Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, "%d:%s", GetUserID(c), GetRole(c))
	})
	r.GET("/admin", auth.Handle(), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/events", auth.WithQueryToken().Handle(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddlewareSetsIdentity(t *testing.T) {
	jwt := utils.NewJWTManager("secret", time.Hour)
	limiter := NewInvalidAuthRateLimiter(5, time.Minute)
	t.Cleanup(limiter.Stop)
	r := newRouter(t, jwt, limiter)

	token, _, err := jwt.GenerateJWT(3, "reseller1", "reseller")
	require.NoError(t, err)

	w := do(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3:reseller", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/events", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/events?access_token="+token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me?access_token="+token, "").Code)
}

func TestJWTMiddlewareThrottlesInvalidAttempts(t *testing.T) {
	limiter := NewInvalidAuthRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	r := newRouter(t, utils.NewJWTManager("secret", time.Hour), limiter)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/me", "garbage").Code)
}

func TestRateLimiterWindowResets(t *testing.T) {
	limiter := NewInvalidAuthRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiterBlockedDoesNotRecord(t *testing.T) {
	limiter := NewInvalidAuthRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)

	assert.False(t, limiter.Blocked("10.0.0.1"))
	assert.False(t, limiter.Blocked("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Blocked("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Blocked("10.0.0.1"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://admin.example.com", "localhost:3000"}))
	r.GET("/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
