package controllers

import (
	"GoodDental/access"
	"GoodDental/handlers"
	"GoodDental/middlewares"
	"GoodDental/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// menuHandler returns the sections the caller may open.
func menuHandler(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	middlewares.RespondJSON(c, access.MenuFor(identity), http.StatusOK)
}

// SetupRootRoute registers the health check and, under api, the menu.
func SetupRootRoute(router *gin.Engine, api *gin.RouterGroup, stores *services.Stores) {
	health := handlers.Health(stores)
	router.GET("/", health)
	router.GET("/healthz", health)
	api.GET("/menu", menuHandler)
}
