package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// ClientHandler serves reseller client management.
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles GET /v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Clients retrieved", clients)
}

// Create handles POST /v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Client created", client)
}

// Get handles GET /v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Client retrieved", client)
}

// Update handles PUT /v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Client updated", client)
}

// Delete handles DELETE /v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Client deleted", nil)
}
