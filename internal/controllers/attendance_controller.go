package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/services"
)

type AttendanceController struct {
	attendance *services.AttendanceService
}

func NewAttendanceController(attendance *services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendance: attendance}
}

// Board records a rider boarding scan.
func (ac *AttendanceController) Board(c *gin.Context) {
	var ev services.BoardingEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := ac.attendance.Board(ev)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Exit records a rider exit scan.
func (ac *AttendanceController) Exit(c *gin.Context) {
	var ev services.BoardingEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := ac.attendance.Exit(ev)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// RecordForDate returns one rider's ledger row for a day (?date=YYYY-MM-DD,
// default today).
func (ac *AttendanceController) RecordForDate(c *gin.Context) {
	riderID, ok := paramUint(c, "rider_id")
	if !ok {
		return
	}
	rec, err := ac.attendance.RecordForDate(riderID, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Unscan marks a rider absent for the current half of the day.
func (ac *AttendanceController) Unscan(c *gin.Context) {
	var ev services.BoardingEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := ac.attendance.Unscan(ev)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// RidersOnVehicle returns the driver's manifest of currently boarded riders.
func (ac *AttendanceController) RidersOnVehicle(c *gin.Context) {
	vehicleID, ok := paramUint(c, "vehicle_id")
	if !ok {
		return
	}
	riders, err := ac.attendance.RidersOnVehicle(vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": riders, "count": len(riders)})
}

// HistoryByRider lists a rider's ledger rows for a date range
// (?start=YYYY-MM-DD&end=YYYY-MM-DD).
func (ac *AttendanceController) HistoryByRider(c *gin.Context) {
	riderID, ok := paramUint(c, "rider_id")
	if !ok {
		return
	}
	recs, err := ac.attendance.HistoryByRider(riderID, c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}

// HistoryByVehicle lists a vehicle's ledger rows for a date range.
func (ac *AttendanceController) HistoryByVehicle(c *gin.Context) {
	vehicleID, ok := paramUint(c, "vehicle_id")
	if !ok {
		return
	}
	recs, err := ac.attendance.HistoryByVehicle(vehicleID, c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}
