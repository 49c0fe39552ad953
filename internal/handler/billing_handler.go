package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// BillingHandler exposes the caller's own credit ledger.
type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Transactions handles GET /v1/billing/transactions
func (h *BillingHandler) Transactions(c *gin.Context) {
	actor := actorFrom(c)
	page, limit := pageParams(c)
	entries, total, err := h.billingService.Transactions(c.Request.Context(), actor, actor.UserID, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Transactions retrieved", entries, page, limit, total)
}
