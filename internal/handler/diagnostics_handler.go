package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/diagnostics"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// DiagnosticsHandler exposes the recent error buffer to admins.
type DiagnosticsHandler struct {
	buffer *diagnostics.Buffer
}

func NewDiagnosticsHandler(buffer *diagnostics.Buffer) *DiagnosticsHandler {
	return &DiagnosticsHandler{buffer: buffer}
}

// RecentErrors handles GET /v1/admin/diagnostics/errors?limit=
func (h *DiagnosticsHandler) RecentErrors(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	utils.Success(c, http.StatusOK, "Recent errors", gin.H{
		"capacity": h.buffer.Capacity(),
		"count":    h.buffer.Len(),
		"errors":   h.buffer.Recent(limit),
	})
}

// ClearErrors handles DELETE /v1/admin/diagnostics/errors
func (h *DiagnosticsHandler) ClearErrors(c *gin.Context) {
	h.buffer.Clear()
	utils.Success(c, http.StatusOK, "Diagnostics cleared", nil)
}
