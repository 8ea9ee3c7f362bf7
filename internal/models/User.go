package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // "guardian", "driver", "admin"

	// Denormalized reverse index: which vehicles this guardian may follow.
	// Maintained by the relationship service on every rider write, never by
	// the CRUD handlers directly.
	AssignedBusIDs pq.Int64Array `json:"assigned_bus_ids" gorm:"type:bigint[]"`

	Driver *Driver `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"driver,omitempty"`
}
