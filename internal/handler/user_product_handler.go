package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// UserProductHandler serves provisioned products and their endpoints.
type UserProductHandler struct {
	userProductService *service.UserProductService
	gatewayService     *service.GatewayService
}

func NewUserProductHandler(userProductService *service.UserProductService, gatewayService *service.GatewayService) *UserProductHandler {
	return &UserProductHandler{userProductService: userProductService, gatewayService: gatewayService}
}

// List handles GET /v1/user-products and GET /v1/admin/user-products?userId=
func (h *UserProductHandler) List(c *gin.Context) {
	userID, _ := strconv.Atoi(c.Query("userId"))
	items, err := h.userProductService.List(c.Request.Context(), actorFrom(c), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User products retrieved", items)
}

// Get handles GET /v1/user-products/:id
func (h *UserProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	up, err := h.userProductService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User product retrieved", up)
}

// Assign handles POST /v1/admin/user-products
func (h *UserProductHandler) Assign(c *gin.Context) {
	var req service.AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	up, err := h.userProductService.Assign(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Product assigned", up)
}

// Update handles PUT /v1/admin/user-products/:id
func (h *UserProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserProductRequest
	if !bindJSON(c, &req) {
		return
	}
	up, err := h.userProductService.Update(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User product updated", up)
}

// Delete handles DELETE /v1/admin/user-products/:id
func (h *UserProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.userProductService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User product deleted", nil)
}

// ListEndpoints handles GET /v1/user-products/:id/endpoints
func (h *UserProductHandler) ListEndpoints(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	endpoints, err := h.userProductService.ListEndpoints(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Endpoints retrieved", endpoints)
}

// AddEndpoint handles POST /v1/admin/user-products/:id/endpoints
func (h *UserProductHandler) AddEndpoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.EndpointRequest
	if !bindJSON(c, &req) {
		return
	}
	ep, err := h.userProductService.AddEndpoint(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Endpoint added", ep)
}

// DeleteEndpoint handles DELETE /v1/admin/endpoints/:id
func (h *UserProductHandler) DeleteEndpoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.userProductService.DeleteEndpoint(c.Request.Context(), actorFrom(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Endpoint deleted", nil)
}

// RunEndpoint handles POST /v1/endpoints/:id/run
func (h *UserProductHandler) RunEndpoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.gatewayService.RunEndpoint(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Endpoint executed", res)
}
