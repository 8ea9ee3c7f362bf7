package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	AlertUnscannedRider = "UNSCANNED_CHILD"
)

const (
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Alert is reconciliation output. Each sweep replaces the prior alert for a
// (vehicle, type) pair instead of appending, so overlapping sweep runs
// converge on the latest snapshot.
type Alert struct {
	gorm.Model
	Type      string `json:"type" gorm:"index:idx_alert_vehicle_type"`
	VehicleID uint   `json:"vehicle_id" gorm:"index:idx_alert_vehicle_type"`
	BusNumber int    `json:"bus_number"`

	Severity string        `json:"severity"`
	Message  string        `json:"message"`
	RiderIDs pq.Int64Array `json:"rider_ids" gorm:"type:bigint[]"`
}
