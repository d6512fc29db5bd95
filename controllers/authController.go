package controllers

import (
	"GoodDental/handlers"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes adds the public auth routes and, behind tokenAuth, the
// routes of the signed-in employee.
func (ac *AuthController) RegisterRoutes(router *gin.Engine, tokenAuth gin.HandlerFunc) {
	public := router.Group("/auth")
	{
		public.POST("/login", ac.Handler.Login)
		public.POST("/refresh-token", ac.Handler.RefreshToken)
		public.POST("/logoff", ac.Handler.Logoff)
		public.POST("/send-reset-code", ac.Handler.SendResetCode)
		public.POST("/reset-password", ac.Handler.ResetPassword)
	}

	authGroup := router.Group("/auth").Use(tokenAuth)
	{
		authGroup.GET("/me", ac.Handler.Me)
		authGroup.PUT("/password", ac.Handler.ChangePassword)
	}
}
