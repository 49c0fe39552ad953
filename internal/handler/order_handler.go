package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// OrderLifecycle is the order workflow served over HTTP.
type OrderLifecycle interface {
	SubmitOrder(ctx context.Context, actor service.Actor, req *service.SubmitOrderRequest) (*models.ProductOrder, error)
	ApproveOrder(ctx context.Context, id int, actor service.Actor) (*models.ProductOrder, error)
	RejectOrder(ctx context.Context, id int, actor service.Actor, reason string) (*models.ProductOrder, error)
	GetOrder(ctx context.Context, id int, actor service.Actor) (*models.ProductOrder, error)
	ListOrders(ctx context.Context, actor service.Actor, req service.OrderListRequest) ([]models.ProductOrder, int, error)
}

// OrderHandler handles product order endpoints.
type OrderHandler struct {
	orders OrderLifecycle
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderLifecycle) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

// Submit handles POST /v1/orders
func (h *OrderHandler) Submit(c *gin.Context) {
	var req service.SubmitOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SubmitOrder(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Order submitted", order)
}

// List handles GET /v1/orders and GET /v1/admin/orders
func (h *OrderHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	orders, total, err := h.orders.ListOrders(c.Request.Context(), actorFrom(c), service.OrderListRequest{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", orders, page, limit, total)
}

// Get handles GET /v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", order)
}

// Approve handles POST /v1/admin/orders/:id/approve
func (h *OrderHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.ApproveOrder(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order approved", order)
}

// Reject handles POST /v1/admin/orders/:id/reject
func (h *OrderHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	order, err := h.orders.RejectOrder(c.Request.Context(), id, actorFrom(c), req.RejectionReason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order rejected", order)
}
