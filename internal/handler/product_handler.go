package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embire2/DayResellers-sub000/internal/service"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// ProductHandler serves the catalog and pro-rata quotes.
type ProductHandler struct {
	productService *service.ProductService
	quoteService   *service.QuoteService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *service.ProductService, quoteService *service.QuoteService) *ProductHandler {
	return &ProductHandler{productService: productService, quoteService: quoteService}
}

// List handles GET /v1/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Products retrieved", products)
}

// Get handles GET /v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", product)
}

// Quote handles GET /v1/products/:id/quote?date=YYYY-MM-DD
func (h *ProductHandler) Quote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	quote, err := h.quoteService.Quote(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Quote calculated", quote)
}
