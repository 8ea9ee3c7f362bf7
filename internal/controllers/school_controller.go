package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
)

type SchoolController struct {
	db *gorm.DB
}

func NewSchoolController(db *gorm.DB) *SchoolController {
	return &SchoolController{db: db}
}

func (sc *SchoolController) Create(c *gin.Context) {
	var school models.School
	if err := c.ShouldBindJSON(&school); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sc.db.Create(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create school: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": school})
}

func (sc *SchoolController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var school models.School
	if err := sc.db.Preload("Vehicles").First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": school})
}

func (sc *SchoolController) List(c *gin.Context) {
	var schools []models.School
	if err := sc.db.Find(&schools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schools, "count": len(schools)})
}

func (sc *SchoolController) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var school models.School
	if err := sc.db.First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input models.School
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	school.Name = input.Name
	school.Address = input.Address
	school.Lat = input.Lat
	school.Lng = input.Lng
	school.Phone = input.Phone
	if err := sc.db.Save(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update school: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": school})
}

func (sc *SchoolController) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	res := sc.db.Delete(&models.School{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "school deleted"})
}
