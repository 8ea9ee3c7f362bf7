package controllers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"schoolbus_tracker/internal/services"
)

// GPSController exposes the position ingest and playback endpoints. Ingest
// is rate limited per vehicle so a misbehaving device cannot flood the
// pipeline; the limit is generous next to real device cadence.
type GPSController struct {
	gps *services.PositionService

	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
}

func NewGPSController(gps *services.PositionService) *GPSController {
	return &GPSController{
		gps:      gps,
		limiters: make(map[uint]*rate.Limiter),
	}
}

func (gc *GPSController) limiter(vehicleID uint) *rate.Limiter {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	l, ok := gc.limiters[vehicleID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(2), 10)
		gc.limiters[vehicleID] = l
	}
	return l
}

// Ingest accepts one GPS sample from a driver device.
func (gc *GPSController) Ingest(c *gin.Context) {
	var input services.PositionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !gc.limiter(input.VehicleID).Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many position updates for vehicle"})
		return
	}

	live, err := gc.gps.UpdatePosition(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": live})
}

// Live returns the current position row for one vehicle.
func (gc *GPSController) Live(c *gin.Context) {
	vehicleID, ok := paramUint(c, "vehicle_id")
	if !ok {
		return
	}
	live, err := gc.gps.GetLive(vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": live})
}

// LiveAll returns every vehicle's current position row.
func (gc *GPSController) LiveAll(c *gin.Context) {
	live, err := gc.gps.ListLive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": live})
}

// History returns one vehicle's position trail for a day (?date=YYYY-MM-DD,
// default today).
func (gc *GPSController) History(c *gin.Context) {
	vehicleID, ok := paramUint(c, "vehicle_id")
	if !ok {
		return
	}
	trail, err := gc.gps.HistoryForDay(vehicleID, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trail})
}

type etaInput struct {
	CurrentLat *float64 `json:"current_lat" binding:"required"`
	CurrentLng *float64 `json:"current_lng" binding:"required"`
	DestLat    *float64 `json:"dest_lat" binding:"required"`
	DestLng    *float64 `json:"dest_lng" binding:"required"`
	SpeedKmh   *float64 `json:"speed_kmh"`
}

// ETA estimates minutes to a destination at the given speed. A stationary
// vehicle yields -1.
func (gc *GPSController) ETA(c *gin.Context) {
	var input etaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	speed := 0.0
	if input.SpeedKmh != nil {
		speed = *input.SpeedKmh
	}
	minutes := services.EstimateETAMinutes(*input.CurrentLat, *input.CurrentLng, *input.DestLat, *input.DestLng, speed)
	text := "Impossible de calculer (vitesse = 0)"
	if minutes >= 0 {
		text = fmt.Sprintf("%d minutes", minutes)
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"eta_minutes": minutes, "eta_text": text}})
}

// MarkArrived records the external arrival signal for a vehicle.
func (gc *GPSController) MarkArrived(c *gin.Context) {
	vehicleID, ok := paramUint(c, "vehicle_id")
	if !ok {
		return
	}
	if err := gc.gps.MarkArrived(vehicleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "arrival recorded"})
}
