package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttendanceBoarded   = "boarded"
	AttendanceCompleted = "completed"
)

// Half-day scan marks consumed by the unscanned-rider sweep.
const (
	ScanPresent = "present"
	ScanAbsent  = "absent"
)

// AttendanceRecord is the per-rider, per-day boarding/exit ledger row.
// The unique (rider_id, date) index is the compare-and-swap that closes the
// concurrent double-board window: the losing insert maps to the same
// Conflict the read-path check produces.
type AttendanceRecord struct {
	gorm.Model
	RiderID uint   `json:"rider_id" gorm:"uniqueIndex:idx_attendance_rider_date"`
	Date    string `json:"date" gorm:"uniqueIndex:idx_attendance_rider_date"` // YYYY-MM-DD

	VehicleID uint `json:"vehicle_id" gorm:"index"`
	DriverID  uint `json:"driver_id"`

	Status string `json:"status"` // "boarded" or "completed"

	BoardingTime *time.Time `json:"boarding_time"`
	BoardingLat  *float64   `json:"boarding_lat"`
	BoardingLng  *float64   `json:"boarding_lng"`
	ExitTime     *time.Time `json:"exit_time"`
	ExitLat      *float64   `json:"exit_lat"`
	ExitLng      *float64   `json:"exit_lng"`

	MorningStatus string `json:"morning_status"` // "present", "absent" or ""
	EveningStatus string `json:"evening_status"`

	Notes string `json:"notes"`
}
