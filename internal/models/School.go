package models

import (
	"gorm.io/gorm"
)

// School is a vehicle's home base. Its coordinates are the fallback
// location surfaced when a vehicle's GPS feed is stale or absent.
type School struct {
	gorm.Model

	Name    string  `json:"name" binding:"required"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Phone   string  `json:"phone"`

	Vehicles []Vehicle `gorm:"foreignKey:SchoolID" json:"vehicles,omitempty"`
}
