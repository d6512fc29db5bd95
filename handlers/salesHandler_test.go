package handlers

import (
	"GoodDental/models"
	"GoodDental/services"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posRouter(c *clinic) *gin.Engine {
	h := NewPOSHandler(services.NewPOSService(c.stores, zerolog.Nop()))
	r := gin.New()
	r.POST("/pos/quote", h.Quote)
	r.POST("/pos/checkout", asEmployee("cashier-1", models.RoleCashier), h.Checkout)
	r.POST("/pos/checkout-anonymous", h.Checkout)
	r.GET("/inventory/low-stock", h.LowStock)
	r.POST("/inventory/:id/stock", h.AdjustStock)
	return r
}

type checkoutResponse struct {
	Sale     models.Sale `json:"sale"`
	Warnings []string    `json:"warnings"`
}

func TestPOSHandler_Checkout(t *testing.T) {
	c := newClinic(product("p1", "Floss", 2.5, 10), product("p2", "Toothbrush", 4, 5))
	r := posRouter(c)

	w := do(r, http.MethodPost, "/pos/checkout", `{"paymentMethod":"cash","items":[{"productId":"p1","quantity":2},{"productId":"p2","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[checkoutResponse](t, w.Body.Bytes())
	assert.Empty(t, got.Warnings)
	assert.Equal(t, "cashier-1", got.Sale.CashierID)
	assert.Equal(t, 9.0, got.Sale.Total)

	p1, _ := c.stores.Products.Get("p1")
	assert.Equal(t, 8, p1.Stock)
	assert.Equal(t, 1, c.stores.Sales.Len())
}

func TestPOSHandler_CheckoutStockWarnings(t *testing.T) {
	c := newClinic(product("p1", "Floss", 2.5, 10), product("p2", "Toothbrush", 4, 5))
	c.products.UpdateFunc = func(ctx context.Context, item models.Product) error {
		return errRemoteDown
	}
	r := posRouter(c)

	w := do(r, http.MethodPost, "/pos/checkout", `{"paymentMethod":"card","items":[{"productId":"p2","quantity":1},{"productId":"p1","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[checkoutResponse](t, w.Body.Bytes())
	assert.NotEmpty(t, got.Sale.ID)
	assert.Equal(t, []string{
		"stock not updated for product p1",
		"stock not updated for product p2",
	}, got.Warnings)
}

func TestPOSHandler_CheckoutRejections(t *testing.T) {
	c := newClinic(product("p1", "Floss", 2.5, 1))
	r := posRouter(c)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"anonymous", "/pos/checkout-anonymous", `{"paymentMethod":"cash","items":[{"productId":"p1","quantity":1}]}`, http.StatusUnauthorized},
		{"bad json", "/pos/checkout", `{`, http.StatusBadRequest},
		{"empty cart", "/pos/checkout", `{"paymentMethod":"cash","items":[]}`, http.StatusBadRequest},
		{"bad payment", "/pos/checkout", `{"paymentMethod":"barter","items":[{"productId":"p1","quantity":1}]}`, http.StatusBadRequest},
		{"unknown product", "/pos/checkout", `{"paymentMethod":"cash","items":[{"productId":"zz","quantity":1}]}`, http.StatusBadRequest},
		{"not enough stock", "/pos/checkout", `{"paymentMethod":"cash","items":[{"productId":"p1","quantity":2}]}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, http.MethodPost, tt.target, tt.body).Code)
		})
	}
	assert.Zero(t, c.stores.Sales.Len())
}

func TestPOSHandler_QuoteStoresNothing(t *testing.T) {
	c := newClinic(product("p1", "Floss", 2.5, 10))
	r := posRouter(c)

	w := do(r, http.MethodPost, "/pos/quote", `{"paymentMethod":"cash","items":[{"productId":"p1","quantity":3}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7.5, decode[models.Sale](t, w.Body.Bytes()).Total)
	assert.Zero(t, c.stores.Sales.Len())
}

func TestPOSHandler_Inventory(t *testing.T) {
	low := product("p2", "Toothbrush", 4, 1)
	low.MinStock = 2
	c := newClinic(product("p1", "Floss", 2.5, 10), low)
	r := posRouter(c)

	w := do(r, http.MethodGet, "/inventory/low-stock", "")
	require.Equal(t, http.StatusOK, w.Code)
	lows := decode[[]models.Product](t, w.Body.Bytes())
	require.Len(t, lows, 1)
	assert.Equal(t, "p2", lows[0].ID)

	w = do(r, http.MethodPost, "/inventory/p2/stock", `{"delta":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, decode[models.Product](t, w.Body.Bytes()).Stock)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/inventory/p2/stock", `{"delta":0}`).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/inventory/p2/stock", `{"delta":-50}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/inventory/zz/stock", `{"delta":1}`).Code)
}

func cashRouter(c *clinic) *gin.Engine {
	h := NewCashHandler(services.NewCashService(c.stores))
	r := gin.New()
	r.GET("/cash/preview", h.Preview)
	r.POST("/cash/close", asEmployee("cashier-1", models.RoleCashier), h.Close)
	r.GET("/cash/closing", h.ForDay)
	return r
}

func TestCashHandler_CloseOncePerDay(t *testing.T) {
	c := newClinic()
	at := time.Date(2026, 10, 14, 11, 0, 0, 0, time.Local).UnixMilli()
	c.sales.rows = []models.Sale{
		{Base: models.Base{ID: "s1", IsActive: true}, PaymentMethod: models.PaymentCash, Total: 20, Date: at},
		{Base: models.Base{ID: "s2", IsActive: true}, PaymentMethod: models.PaymentCard, Total: 50, Date: at},
	}
	c.stores.LoadAll(context.Background())
	r := cashRouter(c)

	w := do(r, http.MethodGet, "/cash/preview?day=2026-10-14&opening=100", "")
	require.Equal(t, http.StatusOK, w.Code)
	preview := decode[models.CashClosing](t, w.Body.Bytes())
	assert.Equal(t, 120.0, preview.ExpectedAmount)
	assert.Equal(t, 1, preview.SalesCount)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/cash/closing?day=2026-10-14", "").Code)

	w = do(r, http.MethodPost, "/cash/close?day=2026-10-14", `{"openingAmount":100,"countedAmount":118}`)
	require.Equal(t, http.StatusCreated, w.Code)
	closing := decode[models.CashClosing](t, w.Body.Bytes())
	assert.Equal(t, -2.0, closing.Difference)
	assert.Equal(t, "cashier-1", closing.ClosedBy)

	w = do(r, http.MethodGet, "/cash/closing?day=2026-10-14", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, closing.ID, decode[models.CashClosing](t, w.Body.Bytes()).ID)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/cash/close?day=2026-10-14", `{"openingAmount":100,"countedAmount":120}`).Code)
}

func TestCashHandler_BadInput(t *testing.T) {
	r := cashRouter(newClinic())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/cash/preview?day=14/10/2026", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/cash/preview?opening=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/cash/preview?opening=lots", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/cash/close", `{"openingAmount":-5,"countedAmount":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/cash/closing?day=2026-02-30", "").Code)
}
