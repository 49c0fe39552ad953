package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// UserHandler serves admin user management and credit adjustments.
type UserHandler struct {
	userService    *service.UserService
	billingService *service.BillingService
}

func NewUserHandler(userService *service.UserService, billingService *service.BillingService) *UserHandler {
	return &UserHandler{userService: userService, billingService: billingService}
}

// List handles GET /v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), actorFrom(c), c.Query("role"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Users retrieved", users)
}

// Create handles POST /v1/admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.userService.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "User created", created)
}

// Get handles GET /v1/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User retrieved", user)
}

// Update handles PUT /v1/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User updated", user)
}

// AdjustCredit handles POST /v1/admin/users/:id/credit
func (h *UserHandler) AdjustCredit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.AdjustCreditRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.billingService.AdjustCredit(c.Request.Context(), actorFrom(c), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Credit adjusted", entry)
}

// Transactions handles GET /v1/admin/users/:id/transactions
func (h *UserHandler) Transactions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)
	entries, total, err := h.billingService.Transactions(c.Request.Context(), actorFrom(c), id, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Transactions retrieved", entries, page, limit, total)
}
