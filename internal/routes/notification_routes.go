package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/middleware"
)

func NotificationRoutes(r *gin.Engine, ctrl *controllers.NotificationController) {
	n := r.Group("/notifications")
	n.Use(middleware.RequireAuth())
	{
		n.GET("/", ctrl.List)
		n.GET("/unread", ctrl.UnreadCount)
		n.PUT("/:id/read", ctrl.MarkAsRead)

		n.POST("/tokens", ctrl.RegisterToken)
		n.DELETE("/tokens", ctrl.RemoveToken)

		n.POST("/broadcast", middleware.RequireAuthWithRole("admin"), ctrl.Broadcast)
	}
}
