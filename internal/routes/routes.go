package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/metrics"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	GPS           *controllers.GPSController
	Attendance    *controllers.AttendanceController
	Fleet         *controllers.FleetController
	Notifications *controllers.NotificationController
	Riders        *controllers.RiderController
	Vehicles      *controllers.VehicleController
	Drivers       *controllers.DriverController
	Routes        *controllers.RouteController
	Schools       *controllers.SchoolController
	WS            *controllers.WSController
}

// SetupRouter mounts every route group. The caller owns serving and
// shutdown; nothing here starts listening.
func SetupRouter(ctrl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r, ctrl.Auth)
	GPSRoutes(r, ctrl.GPS)
	AttendanceRoutes(r, ctrl.Attendance)
	FleetRoutes(r, ctrl.Fleet)
	NotificationRoutes(r, ctrl.Notifications)
	AdminRoutes(r, ctrl)
	WebSocketRoutes(r, ctrl.WS)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return r
}
