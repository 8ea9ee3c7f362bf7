// internal/models/vehicle.go
package models

import (
	"gorm.io/gorm"
)

// Operational status, set by the CRUD layer. Distinct from the live status
// derived from GPS samples (see LivePosition).
const (
	VehicleStatusActive       = "active"
	VehicleStatusInactive     = "inactive"
	VehicleStatusMaintenance  = "in_maintenance"
	VehicleStatusOutOfService = "out_of_service"
)

const (
	MaintenanceOK       = "ok"
	MaintenanceWarning  = "warning"
	MaintenanceCritical = "critical"
)

type Vehicle struct {
	gorm.Model
	BusNumber    int    `json:"bus_number"`
	PlateNumber  string `json:"plate_number" gorm:"unique"`
	Capacity     int    `json:"capacity"`
	VehicleModel string `json:"vehicle_model"`
	Year         int    `json:"year"`

	DriverID uint `json:"driver_id" gorm:"index"` // 0 = no driver assigned
	RouteID  uint `json:"route_id" gorm:"index"`  // 0 = no route assigned
	SchoolID uint `json:"school_id"`              // home base, used as stale-position fallback

	Status            string `json:"status" gorm:"default:active"`
	MaintenanceStatus string `json:"maintenance_status" gorm:"default:ok"`

	// The trip segment currently being driven ("" when no trip is running).
	// Guardian fan-out filters riders by this value against their ActiveTrips.
	CurrentTripType string `json:"current_trip_type"`
}
