package models

import (
	"time"

	"gorm.io/gorm"
)

// Live status derived from speed (see services.DeriveLiveStatus), except
// "arrived" which is only ever set by an external arrival signal and only
// ever cleared by the reconciler's timeout sweep.
const (
	LiveStatusIdle    = "idle"
	LiveStatusEnRoute = "en_route"
	LiveStatusStopped = "stopped"
	LiveStatusDelayed = "delayed"
	LiveStatusArrived = "arrived"
)

// LivePosition is the single current GPS row per vehicle. Every accepted
// sample fully replaces it; the immutable trail lives in PositionHistory.
type LivePosition struct {
	gorm.Model
	VehicleID uint `json:"vehicle_id" gorm:"uniqueIndex"`

	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	SpeedKmh    float64 `json:"speed_kmh"`
	HeadingDeg  float64 `json:"heading_deg"`
	AccuracyM   float64 `json:"accuracy_m"`
	TimestampMs int64   `json:"timestamp_ms"` // device sample time, epoch millis

	Status         string `json:"status"`
	PassengerCount int    `json:"passenger_count"`

	// Denormalized from the vehicle at ingest time.
	DriverID uint `json:"driver_id"`
	RouteID  uint `json:"route_id"`

	ArrivedAt  *time.Time `json:"arrived_at"`
	LastUpdate time.Time  `json:"last_update"`
}
