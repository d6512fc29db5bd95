package controllers

import (
	"GoodDental/handlers"
	"GoodDental/middlewares"
	"GoodDental/models"

	"github.com/gin-gonic/gin"
)

// AdminHandlers are the handlers of the admin-only sections.
type AdminHandlers struct {
	Employees  *handlers.EntityHandler[models.Employee, *models.Employee]
	Enterprise *handlers.EntityHandler[models.EnterpriseInfo, *models.EnterpriseInfo]
	Auth       *handlers.AuthHandler
	Reports    *handlers.ReportHandler
}

// SetupAdminRoutes registers employees, clinic settings, reports and the
// dashboard.
func SetupAdminRoutes(api *gin.RouterGroup, h AdminHandlers) {
	api.GET("/dashboard", middlewares.RequireRoute("/dashboard"), h.Reports.Dashboard)

	employees := api.Group("/employees", middlewares.RequireRoute("/employees"))
	h.Employees.Register(employees, true)
	employees.POST("", h.Auth.CreateEmployee)
	employees.PUT("/:id", h.Auth.UpdateEmployee)
	employees.DELETE("/:id", h.Employees.Delete)
	employees.POST("/:id/deactivate", h.Employees.Deactivate)
	employees.POST("/:id/activate", h.Employees.Activate)
	employees.PUT("/:id/password", h.Auth.SetEmployeePassword)

	enterprise := api.Group("/enterprise", middlewares.RequireRoute("/enterprise"))
	h.Enterprise.Register(enterprise, false)

	reports := api.Group("/reports", middlewares.RequireRoute("/reports"))
	{
		reports.GET("/sales", h.Reports.SalesSummary)
		reports.GET("/sales.xlsx", h.Reports.ExportSales)
		reports.POST("/sales/archive", h.Reports.ArchiveSales)
		reports.POST("/daily", h.Reports.SendDailyReport)
		reports.GET("/export/:collection", h.Reports.ExportCollection)
	}
}

// SetupInternalRoutes registers the machine-to-machine export behind a
// static bearer token.
func SetupInternalRoutes(router *gin.Engine, bearerToken string, reports *handlers.ReportHandler) {
	internal := router.Group("/internal", middlewares.ValidateBearerToken(bearerToken))
	internal.GET("/export/:collection", reports.ExportCollection)
}
