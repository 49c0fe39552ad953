package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/middleware"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// actorFrom builds the service actor from the authenticated context.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: middleware.GetUserID(c),
		Role:   models.UserRole(middleware.GetRole(c)),
	}
}

// parseID reads a positive integer path parameter. It writes a 400 and
// returns false when the parameter is invalid.
func parseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into dst. It writes a 400 and returns
// false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}

// pageParams reads page and limit query parameters. Invalid values are
// left to the repository defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
