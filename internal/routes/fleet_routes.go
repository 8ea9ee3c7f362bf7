package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/middleware"
)

func FleetRoutes(r *gin.Engine, ctrl *controllers.FleetController) {
	fleet := r.Group("/fleet")
	fleet.Use(middleware.RequireAuth())
	{
		fleet.GET("/realtime", ctrl.Realtime)
		fleet.GET("/realtime/:vehicle_id", ctrl.VehicleRealtime)
		fleet.GET("/stats", ctrl.Stats)
		fleet.GET("/alerts", ctrl.Alerts)
	}
}
