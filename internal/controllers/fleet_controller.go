package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/services"
)

type FleetController struct {
	fleet *services.FleetService
	db    *gorm.DB
}

func NewFleetController(fleet *services.FleetService, db *gorm.DB) *FleetController {
	return &FleetController{fleet: fleet, db: db}
}

// Realtime returns the enriched realtime view of the whole fleet.
func (fc *FleetController) Realtime(c *gin.Context) {
	fleet, err := fc.fleet.ListRealtime()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fleet, "count": len(fleet)})
}

// VehicleRealtime returns the enriched realtime view of one vehicle.
func (fc *FleetController) VehicleRealtime(c *gin.Context) {
	vehicleID, ok := paramUint(c, "vehicle_id")
	if !ok {
		return
	}
	view, err := fc.fleet.GetRealtime(vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// Stats returns the dashboard aggregates.
func (fc *FleetController) Stats(c *gin.Context) {
	stats, err := fc.fleet.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// Alerts lists the current reconciliation alerts, newest first.
func (fc *FleetController) Alerts(c *gin.Context) {
	var alerts []models.Alert
	if err := fc.db.Order("created_at desc").Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts, "count": len(alerts)})
}
