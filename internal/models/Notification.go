package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	NotificationBusArriving    = "bus_arriving"
	NotificationBusDelayed     = "bus_delayed"
	NotificationRouteStarted   = "route_started"
	NotificationRiderBoarded   = "student_boarded"
	NotificationRiderExited    = "student_exited"
	NotificationRiderAbsent    = "student_absent"
	NotificationGeneral        = "general"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification is written once at send time; only the read state mutates
// afterwards. Delivery outcome is tracked separately per token and never
// rolls this record back.
type Notification struct {
	gorm.Model
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`

	RecipientIDs pq.Int64Array `json:"recipient_ids" gorm:"type:bigint[]"`
	Data         []byte        `json:"data" gorm:"type:jsonb"`

	Read   bool       `json:"read" gorm:"default:false"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`
}
