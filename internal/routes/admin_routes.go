package routes

import (
	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/middleware"
)

// AdminRoutes mounts the registry CRUD surface. Reads are open to any
// authenticated user; writes are admin only, except trip start/end which a
// driver performs from the vehicle.
func AdminRoutes(r *gin.Engine, ctrl Controllers) {
	riders := r.Group("/riders")
	riders.Use(middleware.RequireAuth())
	{
		riders.GET("/", ctrl.Riders.List)
		riders.GET("/:id", ctrl.Riders.Get)
		riders.POST("/", middleware.RequireAuthWithRole("admin"), ctrl.Riders.Create)
		riders.PUT("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Riders.Update)
		riders.DELETE("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Riders.Delete)
	}

	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.RequireAuth())
	{
		vehicles.GET("/", ctrl.Vehicles.List)
		vehicles.GET("/:id", ctrl.Vehicles.Get)
		vehicles.POST("/", middleware.RequireAuthWithRole("admin"), ctrl.Vehicles.Create)
		vehicles.PUT("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Vehicles.Update)
		vehicles.DELETE("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Vehicles.Delete)

		vehicles.POST("/:id/trip/start", middleware.RequireAuthWithRole("driver", "admin"), ctrl.Vehicles.StartTrip)
		vehicles.POST("/:id/trip/end", middleware.RequireAuthWithRole("driver", "admin"), ctrl.Vehicles.EndTrip)
	}

	drivers := r.Group("/drivers")
	drivers.Use(middleware.RequireAuth())
	{
		drivers.GET("/", ctrl.Drivers.List)
		drivers.GET("/:id", ctrl.Drivers.Get)
		drivers.PUT("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Drivers.Update)
	}

	routeGroup := r.Group("/routes")
	routeGroup.Use(middleware.RequireAuth())
	{
		routeGroup.GET("/", ctrl.Routes.List)
		routeGroup.GET("/:id", ctrl.Routes.Get)
		routeGroup.POST("/", middleware.RequireAuthWithRole("admin"), ctrl.Routes.Create)
		routeGroup.PUT("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Routes.Update)
		routeGroup.DELETE("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Routes.Delete)
	}

	schools := r.Group("/schools")
	schools.Use(middleware.RequireAuth())
	{
		schools.GET("/", ctrl.Schools.List)
		schools.GET("/:id", ctrl.Schools.Get)
		schools.POST("/", middleware.RequireAuthWithRole("admin"), ctrl.Schools.Create)
		schools.PUT("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Schools.Update)
		schools.DELETE("/:id", middleware.RequireAuthWithRole("admin"), ctrl.Schools.Delete)
	}
}
