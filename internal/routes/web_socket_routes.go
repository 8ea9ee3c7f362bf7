package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/controllers"
)

// WebSocketRoutes mounts the live position stream. Auth happens inside the
// handler because the token arrives as a query parameter.
func WebSocketRoutes(r *gin.Engine, ctrl *controllers.WSController) {
	r.GET("/ws/positions", ctrl.Stream)
}
