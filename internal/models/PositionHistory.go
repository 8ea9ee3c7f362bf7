package models

import (
	"time"

	"gorm.io/gorm"
)

// PositionHistory is the append-only sample trail, partitioned per vehicle
// and calendar day for playback queries.
type PositionHistory struct {
	gorm.Model
	VehicleID uint   `json:"vehicle_id" gorm:"index:idx_history_vehicle_day"`
	Day       string `json:"day" gorm:"index:idx_history_vehicle_day"` // YYYY-MM-DD

	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	SpeedKmh    float64 `json:"speed_kmh"`
	HeadingDeg  float64 `json:"heading_deg"`
	AccuracyM   float64 `json:"accuracy_m"`
	TimestampMs int64   `json:"timestamp_ms"`

	SampleTime time.Time `json:"sample_time"`
	EventType  string    `json:"event_type"` // "departure", "arrival", "stop", "route_deviation" or ""
}
