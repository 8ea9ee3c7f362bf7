package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/services"
)

// RiderController owns rider CRUD. Every write goes through the
// relationship service with the before/after pair so the guardian index
// stays consistent.
type RiderController struct {
	db        *gorm.DB
	relations *services.RelationshipService
}

func NewRiderController(db *gorm.DB, relations *services.RelationshipService) *RiderController {
	return &RiderController{db: db, relations: relations}
}

type riderInput struct {
	FirstName     string   `json:"first_name" binding:"required"`
	LastName      string   `json:"last_name" binding:"required"`
	Grade         string   `json:"grade"`
	GuardianIDs   []int64  `json:"guardian_ids"`
	VehicleID     uint     `json:"vehicle_id"`
	RouteID       uint     `json:"route_id"`
	ActiveTrips   []string `json:"active_trips"`
	PickupAddress string   `json:"pickup_address"`
	PickupLat     float64  `json:"pickup_lat"`
	PickupLng     float64  `json:"pickup_lng"`
}

func (ri riderInput) apply(r *models.Rider) {
	r.FirstName = ri.FirstName
	r.LastName = ri.LastName
	r.Grade = ri.Grade
	r.GuardianIDs = pq.Int64Array(ri.GuardianIDs)
	r.VehicleID = ri.VehicleID
	r.RouteID = ri.RouteID
	r.ActiveTrips = pq.StringArray(ri.ActiveTrips)
	r.PickupAddress = ri.PickupAddress
	r.PickupLat = ri.PickupLat
	r.PickupLng = ri.PickupLng
}

func (rc *RiderController) Create(c *gin.Context) {
	var input riderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rider := models.Rider{IsActive: true}
	input.apply(&rider)
	if err := rc.db.Create(&rider).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create rider: " + err.Error()})
		return
	}

	rc.propagate(services.RiderChange{Old: nil, New: &rider})
	c.JSON(http.StatusCreated, gin.H{"data": rider})
}

func (rc *RiderController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var rider models.Rider
	if err := rc.db.First(&rider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rider not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rider})
}

// List returns riders, optionally filtered by vehicle (?vehicle_id=).
func (rc *RiderController) List(c *gin.Context) {
	q := rc.db.Where("is_active = ?", true)
	if raw := c.Query("vehicle_id"); raw != "" {
		q = q.Where("vehicle_id = ?", raw)
	}
	var riders []models.Rider
	if err := q.Find(&riders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": riders, "count": len(riders)})
}

func (rc *RiderController) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var input riderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rider models.Rider
	if err := rc.db.First(&rider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rider not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	before := rider
	input.apply(&rider)
	if err := rc.db.Save(&rider).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update rider: " + err.Error()})
		return
	}

	rc.propagate(services.RiderChange{Old: &before, New: &rider})
	c.JSON(http.StatusOK, gin.H{"data": rider})
}

func (rc *RiderController) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var rider models.Rider
	if err := rc.db.First(&rider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rider not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := rc.db.Delete(&rider).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete rider: " + err.Error()})
		return
	}

	rc.propagate(services.RiderChange{Old: &rider, New: nil})
	c.JSON(http.StatusOK, gin.H{"message": "rider deleted"})
}

// propagate updates the guardian index. Failures are logged, not surfaced:
// the rider write already committed and the periodic rebuild repairs the
// index.
func (rc *RiderController) propagate(change services.RiderChange) {
	if err := rc.relations.RiderChanged(change); err != nil {
		logrus.WithError(err).Warn("Guardian index update incomplete after rider write.")
	}
}
