package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/middleware"
)

func GPSRoutes(r *gin.Engine, ctrl *controllers.GPSController) {
	gps := r.Group("/gps")
	{
		gps.POST("/ingest", middleware.RequireAuthWithRole("driver", "admin"), ctrl.Ingest)
		gps.POST("/vehicles/:vehicle_id/arrived", middleware.RequireAuthWithRole("driver", "admin"), ctrl.MarkArrived)

		gps.POST("/eta", middleware.RequireAuth(), ctrl.ETA)

		gps.GET("/live", middleware.RequireAuth(), ctrl.LiveAll)
		gps.GET("/live/:vehicle_id", middleware.RequireAuth(), ctrl.Live)
		gps.GET("/history/:vehicle_id", middleware.RequireAuth(), ctrl.History)
	}
}
