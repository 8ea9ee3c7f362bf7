package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/middleware"
)

func AttendanceRoutes(r *gin.Engine, ctrl *controllers.AttendanceController) {
	att := r.Group("/attendance")
	{
		att.POST("/board", middleware.RequireAuthWithRole("driver", "admin"), ctrl.Board)
		att.POST("/exit", middleware.RequireAuthWithRole("driver", "admin"), ctrl.Exit)
		att.POST("/unscan", middleware.RequireAuthWithRole("driver", "admin"), ctrl.Unscan)

		att.GET("/riders/:rider_id", middleware.RequireAuth(), ctrl.RecordForDate)
		att.GET("/riders/:rider_id/history", middleware.RequireAuth(), ctrl.HistoryByRider)
		att.GET("/vehicles/:vehicle_id/onboard", middleware.RequireAuth(), ctrl.RidersOnVehicle)
		att.GET("/vehicles/:vehicle_id/history", middleware.RequireAuth(), ctrl.HistoryByVehicle)
	}
}
