package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
)

type DriverController struct {
	db *gorm.DB
}

func NewDriverController(db *gorm.DB) *DriverController {
	return &DriverController{db: db}
}

func (dc *DriverController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var driver models.Driver
	if err := dc.db.Preload("User").First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	driver.User.Password = ""
	c.JSON(http.StatusOK, gin.H{"data": driver})
}

func (dc *DriverController) List(c *gin.Context) {
	var drivers []models.Driver
	if err := dc.db.Preload("User").Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for i := range drivers {
		drivers[i].User.Password = ""
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers, "count": len(drivers)})
}

type driverUpdateInput struct {
	VehicleID     uint   `json:"vehicle_id"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}

// Update reassigns a driver's vehicle or contact details.
func (dc *DriverController) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var driver models.Driver
	if err := dc.db.First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input driverUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driver.VehicleID = input.VehicleID
	if input.Phone != "" {
		driver.Phone = input.Phone
	}
	if input.LicenseNumber != "" {
		driver.LicenseNumber = input.LicenseNumber
	}
	if err := dc.db.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": driver})
}
