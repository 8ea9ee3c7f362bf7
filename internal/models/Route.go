package models

import (
	"gorm.io/gorm"
)

// Route represents a service path between two zones of the city.
// Stop sequences are generated by the external mapping API and stored
// as opaque geometry; the core only reads the display fields.
type Route struct {
	gorm.Model

	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	FromZone    string `json:"from_zone"`
	ToZone      string `json:"to_zone"`

	Geometry []byte `gorm:"type:bytea" json:"-"`

	Vehicles []Vehicle `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vehicles,omitempty"`
}
