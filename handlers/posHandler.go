package handlers

import (
	"GoodDental/middlewares"
	"GoodDental/services"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

type POSHandler struct {
	service *services.POSService
}

func NewPOSHandler(service *services.POSService) *POSHandler {
	return &POSHandler{service: service}
}

// Quote prices a cart without selling it.
func (h *POSHandler) Quote(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	sale, err := h.service.Quote(req)
	if err != nil {
		middlewares.RespondError(c, "Failed to price sale", err)
		return
	}
	middlewares.RespondJSON(c, sale, http.StatusOK)
}

// Checkout sells a cart as the calling cashier. When the sale is stored but
// some stock counts could not be updated, the sale is still returned with the
// affected products listed under warnings.
func (h *POSHandler) Checkout(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	req.CashierID = identity.ID

	sale, err := h.service.Checkout(c.Request.Context(), req)
	var stockErr *services.StockUpdateError
	switch {
	case errors.As(err, &stockErr):
		warnings := make([]string, 0, len(stockErr.Errors))
		for productID := range stockErr.Errors {
			warnings = append(warnings, "stock not updated for product "+productID)
		}
		sort.Strings(warnings)
		middlewares.RespondJSON(c, gin.H{"sale": sale, "warnings": warnings}, http.StatusCreated)
	case err != nil:
		middlewares.RespondError(c, "Failed to complete sale", err)
	default:
		middlewares.RespondJSON(c, gin.H{"sale": sale}, http.StatusCreated)
	}
}

func (h *POSHandler) LowStock(c *gin.Context) {
	middlewares.RespondJSON(c, h.service.LowStock(), http.StatusOK)
}

// AdjustStock adds a positive or negative delta to a product's stock.
func (h *POSHandler) AdjustStock(c *gin.Context) {
	var body struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Delta == 0 {
		middlewares.HttpError(c, "delta must be a non-zero integer", http.StatusBadRequest, err)
		return
	}
	product, err := h.service.AdjustStock(c.Request.Context(), c.Param("id"), body.Delta)
	if err != nil {
		middlewares.RespondError(c, "Failed to adjust stock", err)
		return
	}
	middlewares.RespondJSON(c, product, http.StatusOK)
}
