package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"schoolbus_tracker/internal/config"
	"schoolbus_tracker/internal/controllers"
	"schoolbus_tracker/internal/jobs"
	"schoolbus_tracker/internal/logger"
	"schoolbus_tracker/internal/metrics"
	"schoolbus_tracker/internal/middleware"
	"schoolbus_tracker/internal/push"
	"schoolbus_tracker/internal/realtime"
	"schoolbus_tracker/internal/routes"
	"schoolbus_tracker/internal/services"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()
	metrics.RegisterDefault()

	cfg := config.LoadSettings()
	db := config.InitDB()

	var broker realtime.Broker
	if cfg.RedisURL != "" {
		rb, err := realtime.NewRedisBroker(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Fatal("Could not connect realtime broker to Redis.")
		}
		broker = rb
		logrus.Info("Realtime broker: Redis.")
	} else {
		broker = realtime.NewHub()
		logrus.Info("Realtime broker: in-memory hub.")
	}

	var gateway push.Gateway
	if cfg.FCMServerKey != "" {
		gateway = push.NewFCMClient(cfg.FCMEndpoint, cfg.FCMServerKey)
		logrus.Info("Push gateway: FCM.")
	} else {
		gateway = &push.FakeGateway{}
		logrus.Warn("No FCM server key configured; push delivery is a no-op.")
	}

	clock := services.SystemClock()
	notifications := services.NewNotificationService(db, gateway, clock)
	attendance := services.NewAttendanceService(db, notifications, clock, cfg.Timezone, cfg.EveningCutoverHour)
	gps := services.NewPositionService(db, broker, clock, cfg.Timezone)
	fleet := services.NewFleetService(db, attendance, clock, cfg.StaleWindow, cfg.FallbackLat, cfg.FallbackLng)
	relations := services.NewRelationshipService(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reconciler := jobs.NewReconciler(db, relations, clock, cfg)
	reconciler.Start(ctx)

	r := routes.SetupRouter(routes.Controllers{
		Auth:          controllers.NewAuthController(db),
		GPS:           controllers.NewGPSController(gps),
		Attendance:    controllers.NewAttendanceController(attendance),
		Fleet:         controllers.NewFleetController(fleet, db),
		Notifications: controllers.NewNotificationController(notifications),
		Riders:        controllers.NewRiderController(db, relations),
		Vehicles:      controllers.NewVehicleController(db, notifications),
		Drivers:       controllers.NewDriverController(db),
		Routes:        controllers.NewRouteController(db),
		Schools:       controllers.NewSchoolController(db),
		WS:            controllers.NewWSController(db, broker),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: middleware.EnableCORS(r),
	}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("Server listening.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed.")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutdown signal received.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed.")
	}
	logrus.Info("Server stopped.")
}
