package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// APISettingHandler serves admin management of API call templates.
type APISettingHandler struct {
	service *service.APISettingService
}

func NewAPISettingHandler(svc *service.APISettingService) *APISettingHandler {
	return &APISettingHandler{service: svc}
}

// List handles GET /v1/admin/api-settings
func (h *APISettingHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "API settings retrieved", items)
}

// Get handles GET /v1/admin/api-settings/:id
func (h *APISettingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "API setting retrieved", item)
}

// Create handles POST /v1/admin/api-settings
func (h *APISettingHandler) Create(c *gin.Context) {
	var req service.APISettingRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "API setting created", item)
}

// Update handles PUT /v1/admin/api-settings/:id
func (h *APISettingHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.APISettingRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "API setting updated", item)
}

// Delete handles DELETE /v1/admin/api-settings/:id
func (h *APISettingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "API setting deleted", nil)
}
