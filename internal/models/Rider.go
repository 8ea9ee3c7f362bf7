package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Trip segments a rider can be enrolled in.
const (
	TripMorningOutbound = "morning_outbound"
	TripMiddayOutbound  = "midday_outbound"
	TripMiddayReturn    = "midday_return"
	TripEveningReturn   = "evening_return"
)

// Rider is a transported student. GuardianIDs and VehicleID feed the
// denormalized reverse index on User.AssignedBusIDs; every write to a rider
// must go through the relationship service with the before/after pair.
type Rider struct {
	gorm.Model
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     string `json:"grade"`

	GuardianIDs pq.Int64Array  `json:"guardian_ids" gorm:"type:bigint[]"`
	VehicleID   uint           `json:"vehicle_id" gorm:"index"` // 0 = unassigned
	RouteID     uint           `json:"route_id"`
	ActiveTrips pq.StringArray `json:"active_trips" gorm:"type:text[]"`

	PickupAddress string  `json:"pickup_address"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`

	IsActive bool `json:"is_active" gorm:"default:true"`
}

func (r *Rider) FullName() string {
	return r.FirstName + " " + r.LastName
}
