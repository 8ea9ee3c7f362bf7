package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/services"
)

type VehicleController struct {
	db            *gorm.DB
	notifications *services.NotificationService
}

func NewVehicleController(db *gorm.DB, notifications *services.NotificationService) *VehicleController {
	return &VehicleController{db: db, notifications: notifications}
}

type vehicleInput struct {
	BusNumber    int    `json:"bus_number" binding:"required"`
	PlateNumber  string `json:"plate_number" binding:"required"`
	Capacity     int    `json:"capacity"`
	VehicleModel string `json:"vehicle_model"`
	Year         int    `json:"year"`
	DriverID     uint   `json:"driver_id"`
	RouteID      uint   `json:"route_id"`
	SchoolID     uint   `json:"school_id"`
	Status       string `json:"status"`
}

func (vc *VehicleController) Create(c *gin.Context) {
	var input vehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.Vehicle{
		BusNumber:    input.BusNumber,
		PlateNumber:  input.PlateNumber,
		Capacity:     input.Capacity,
		VehicleModel: input.VehicleModel,
		Year:         input.Year,
		DriverID:     input.DriverID,
		RouteID:      input.RouteID,
		SchoolID:     input.SchoolID,
		Status:       input.Status,
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusActive
	}
	if err := vc.db.Create(&vehicle).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "plate number already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": vehicle})
}

func (vc *VehicleController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var vehicle models.Vehicle
	if err := vc.db.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}

func (vc *VehicleController) List(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := vc.db.Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles, "count": len(vehicles)})
}

func (vc *VehicleController) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var vehicle models.Vehicle
	if err := vc.db.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input vehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle.BusNumber = input.BusNumber
	vehicle.PlateNumber = input.PlateNumber
	vehicle.Capacity = input.Capacity
	vehicle.VehicleModel = input.VehicleModel
	vehicle.Year = input.Year
	vehicle.DriverID = input.DriverID
	vehicle.RouteID = input.RouteID
	vehicle.SchoolID = input.SchoolID
	if input.Status != "" {
		vehicle.Status = input.Status
	}
	if err := vc.db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}

func (vc *VehicleController) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	res := vc.db.Delete(&models.Vehicle{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}

type startTripInput struct {
	TripType string `json:"trip_type" binding:"required"`
	DriverID uint   `json:"driver_id" binding:"required"`
}

// StartTrip sets the vehicle's current trip segment and notifies the
// guardians of every rider enrolled in it.
func (vc *VehicleController) StartTrip(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var input startTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch input.TripType {
	case models.TripMorningOutbound, models.TripMiddayOutbound, models.TripMiddayReturn, models.TripEveningReturn:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip_type"})
		return
	}

	res := vc.db.Model(&models.Vehicle{}).Where("id = ?", id).
		Update("current_trip_type", input.TripType)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}

	if err := vc.notifications.NotifyGuardiansRouteStarted(id, input.DriverID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip started", "trip_type": input.TripType})
}

// EndTrip clears the vehicle's current trip segment.
func (vc *VehicleController) EndTrip(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	res := vc.db.Model(&models.Vehicle{}).Where("id = ?", id).
		Update("current_trip_type", "")
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip ended"})
}
