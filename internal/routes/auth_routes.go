package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/middleware"
)

func AuthRoutes(r *gin.Engine, ctrl *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", ctrl.Signup)
		auth.POST("/login", ctrl.Login)
		auth.GET("/me", middleware.RequireAuth(), ctrl.Me)
	}
}
