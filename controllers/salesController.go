package controllers

import (
	"GoodDental/access"
	"GoodDental/handlers"
	"GoodDental/middlewares"
	"GoodDental/models"

	"github.com/gin-gonic/gin"
)

// SalesHandlers are the handlers of inventory, point of sale and cash.
type SalesHandlers struct {
	Products     *handlers.EntityHandler[models.Product, *models.Product]
	Sales        *handlers.EntityHandler[models.Sale, *models.Sale]
	CashClosings *handlers.EntityHandler[models.CashClosing, *models.CashClosing]
	POS          *handlers.POSHandler
	Cash         *handlers.CashHandler
}

// SetupSalesRoutes registers inventory, point of sale and cash routes.
func SetupSalesRoutes(api *gin.RouterGroup, h SalesHandlers) {
	adminOnly := middlewares.RequireRoles(access.Roles(models.RoleAdmin))

	inventory := api.Group("/inventory", middlewares.RequireRoute("/inventory"))
	inventory.GET("/low-stock", h.POS.LowStock)
	inventory.POST("/:id/stock", h.POS.AdjustStock)
	h.Products.Register(inventory, false)

	pos := api.Group("/pos", middlewares.RequireRoute("/pos"))
	{
		pos.GET("/products", h.Products.List)
		pos.POST("/quote", h.POS.Quote)
		pos.POST("/checkout", h.POS.Checkout)
	}
	sales := pos.Group("/sales")
	h.Sales.Register(sales, true)
	sales.POST("/:id/deactivate", adminOnly, h.Sales.Deactivate)

	cash := api.Group("/cash", middlewares.RequireRoute("/cash"))
	{
		cash.GET("/preview", h.Cash.Preview)
		cash.POST("/close", h.Cash.Close)
		cash.GET("/closing", h.Cash.ForDay)
	}
	h.CashClosings.Register(cash.Group("/closings"), true)
}
