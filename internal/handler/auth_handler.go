package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/middleware"
	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// Authenticator verifies login credentials.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}

// AuthHandler handles login and the current user. Failed logins count
// against the same per-IP limiter as invalid tokens.
type AuthHandler struct {
	authService Authenticator
	userService *service.UserService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService Authenticator, userService *service.UserService, rateLimiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, rateLimiter: rateLimiter}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if h.rateLimiter != nil && h.rateLimiter.Blocked(ip) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many failed login attempts, try again later")
		return
	}

	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if h.rateLimiter != nil && errors.Is(err, utils.ErrInvalidCredentials) && !h.rateLimiter.Allow(ip) {
			log.Warn().Str("ip", ip).Msg("Login attempts throttled")
		}
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Login successful", res)
}

// Me handles GET /v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor := actorFrom(c)
	user, err := h.userService.Get(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Current user", user)
}
