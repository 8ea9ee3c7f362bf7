package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
)

// PositionView is the position block surfaced to dashboard consumers.
type PositionView struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	SpeedKmh    float64 `json:"speed_kmh"`
	HeadingDeg  float64 `json:"heading_deg"`
	AccuracyM   float64 `json:"accuracy_m"`
	TimestampMs int64   `json:"timestamp_ms"`
}

type DriverInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type RouteInfo struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	FromZone string `json:"from_zone"`
	ToZone   string `json:"to_zone"`
}

// VehicleRealtime is one vehicle enriched with position, driver and route.
type VehicleRealtime struct {
	ID                uint   `json:"id"`
	BusNumber         int    `json:"bus_number"`
	PlateNumber       string `json:"plate_number"`
	Capacity          int    `json:"capacity"`
	VehicleModel      string `json:"vehicle_model"`
	Year              int    `json:"year"`
	Status            string `json:"status"`
	MaintenanceStatus string `json:"maintenance_status"`

	Position       *PositionView `json:"position"`
	CurrentZone    string        `json:"current_zone,omitempty"`
	LiveStatus     string        `json:"live_status"`
	Driver         *DriverInfo   `json:"driver"`
	Route          *RouteInfo    `json:"route"`
	PassengerCount int           `json:"passenger_count"`
	BoardedCount   int64         `json:"boarded_count"`

	// LastUpdate stays the original sample time even when the surfaced
	// position is the fallback, so staleness is visible to consumers.
	LastUpdate *time.Time `json:"last_update"`
	IsStale    bool       `json:"is_stale"`
	IsActive   bool       `json:"is_active"`
}

// FleetStats are fleet-wide aggregate counts.
type FleetStats struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	Inactive          int `json:"inactive"`
	EnRoute           int `json:"en_route"`
	Stopped           int `json:"stopped"`
	TotalPassengers   int `json:"total_passengers"`
	MaintenanceAlerts int `json:"maintenance_alerts"`
}

// FleetService is the read-side aggregator joining vehicles with their live
// position, driver and route, applying the staleness fallback. No writes.
type FleetService struct {
	db          *gorm.DB
	attendance  *AttendanceService
	clock       Clock
	staleWindow time.Duration
	fallbackLat float64
	fallbackLng float64
}

func NewFleetService(db *gorm.DB, attendance *AttendanceService, clock Clock, staleWindow time.Duration, fallbackLat, fallbackLng float64) *FleetService {
	return &FleetService{
		db:          db,
		attendance:  attendance,
		clock:       clock,
		staleWindow: staleWindow,
		fallbackLat: fallbackLat,
		fallbackLng: fallbackLng,
	}
}

// resolvePosition applies the staleness rule to one stored position. A
// fresh sample passes through; a stale or absent one is replaced with the
// fallback coordinates and a forced "stopped" status, while the original
// sample time is preserved (nil only when no sample ever existed).
func resolvePosition(live *models.LivePosition, now time.Time, window time.Duration, fallbackLat, fallbackLng float64) (pos *PositionView, status string, lastUpdate *time.Time, stale bool) {
	if live == nil {
		return &PositionView{Lat: fallbackLat, Lng: fallbackLng}, models.LiveStatusStopped, nil, true
	}

	sampleAt := time.UnixMilli(live.TimestampMs)
	lu := live.LastUpdate
	if now.Sub(sampleAt) >= window {
		return &PositionView{Lat: fallbackLat, Lng: fallbackLng, TimestampMs: live.TimestampMs},
			models.LiveStatusStopped, &lu, true
	}

	return &PositionView{
		Lat:         live.Latitude,
		Lng:         live.Longitude,
		SpeedKmh:    live.SpeedKmh,
		HeadingDeg:  live.HeadingDeg,
		AccuracyM:   live.AccuracyM,
		TimestampMs: live.TimestampMs,
	}, live.Status, &lu, false
}

// ListRealtime returns every vehicle enriched. The five source collections
// are fetched concurrently; enrichment itself is a pure join.
func (s *FleetService) ListRealtime() ([]VehicleRealtime, error) {
	var (
		wg        sync.WaitGroup
		vehicles  []models.Vehicle
		positions []models.LivePosition
		drivers   []models.Driver
		routes    []models.Route
		schools   []models.School
		errs      [5]error
	)

	wg.Add(5)
	go func() { defer wg.Done(); errs[0] = s.db.Find(&vehicles).Error }()
	go func() { defer wg.Done(); errs[1] = s.db.Find(&positions).Error }()
	go func() { defer wg.Done(); errs[2] = s.db.Find(&drivers).Error }()
	go func() { defer wg.Done(); errs[3] = s.db.Find(&routes).Error }()
	go func() { defer wg.Done(); errs[4] = s.db.Find(&schools).Error }()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetch fleet collections: %w", err)
		}
	}

	posByVehicle := make(map[uint]*models.LivePosition, len(positions))
	for i := range positions {
		posByVehicle[positions[i].VehicleID] = &positions[i]
	}
	driverByID := make(map[uint]*models.Driver, len(drivers))
	for i := range drivers {
		driverByID[drivers[i].ID] = &drivers[i]
	}
	routeByID := make(map[uint]*models.Route, len(routes))
	for i := range routes {
		routeByID[routes[i].ID] = &routes[i]
	}
	schoolByID := make(map[uint]*models.School, len(schools))
	for i := range schools {
		schoolByID[schools[i].ID] = &schools[i]
	}

	now := s.clock.Now()
	out := make([]VehicleRealtime, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, s.enrich(v, posByVehicle[v.ID], driverByID, routeByID, schoolByID, now))
	}
	return out, nil
}

// GetRealtime returns one enriched vehicle, or ErrNotFound.
func (s *FleetService) GetRealtime(vehicleID uint) (*VehicleRealtime, error) {
	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", ErrNotFound, vehicleID)
		}
		return nil, err
	}

	var live *models.LivePosition
	var row models.LivePosition
	if err := s.db.Where("vehicle_id = ?", vehicleID).First(&row).Error; err == nil {
		live = &row
	}

	driverByID := map[uint]*models.Driver{}
	if vehicle.DriverID != 0 {
		var d models.Driver
		if err := s.db.First(&d, vehicle.DriverID).Error; err == nil {
			driverByID[d.ID] = &d
		}
	}
	routeByID := map[uint]*models.Route{}
	if vehicle.RouteID != 0 {
		var r models.Route
		if err := s.db.First(&r, vehicle.RouteID).Error; err == nil {
			routeByID[r.ID] = &r
		}
	}
	schoolByID := map[uint]*models.School{}
	if vehicle.SchoolID != 0 {
		var sc models.School
		if err := s.db.First(&sc, vehicle.SchoolID).Error; err == nil {
			schoolByID[sc.ID] = &sc
		}
	}

	enriched := s.enrich(vehicle, live, driverByID, routeByID, schoolByID, s.clock.Now())
	return &enriched, nil
}

// Stats computes the fleet-wide aggregates from the enriched list.
func (s *FleetService) Stats() (*FleetStats, error) {
	fleet, err := s.ListRealtime()
	if err != nil {
		return nil, err
	}

	stats := FleetStats{Total: len(fleet)}
	for _, v := range fleet {
		if v.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		switch v.LiveStatus {
		case models.LiveStatusEnRoute:
			stats.EnRoute++
		case models.LiveStatusStopped, models.LiveStatusIdle:
			stats.Stopped++
		}
		stats.TotalPassengers += v.PassengerCount
		if v.MaintenanceStatus == models.MaintenanceWarning || v.MaintenanceStatus == models.MaintenanceCritical {
			stats.MaintenanceAlerts++
		}
	}
	return &stats, nil
}

func (s *FleetService) enrich(v models.Vehicle, live *models.LivePosition, driverByID map[uint]*models.Driver, routeByID map[uint]*models.Route, schoolByID map[uint]*models.School, now time.Time) VehicleRealtime {
	fbLat, fbLng := s.fallbackLat, s.fallbackLng
	if school := schoolByID[v.SchoolID]; school != nil {
		fbLat, fbLng = school.Lat, school.Lng
	}

	pos, status, lastUpdate, stale := resolvePosition(live, now, s.staleWindow, fbLat, fbLng)

	out := VehicleRealtime{
		ID:                v.ID,
		BusNumber:         v.BusNumber,
		PlateNumber:       v.PlateNumber,
		Capacity:          v.Capacity,
		VehicleModel:      v.VehicleModel,
		Year:              v.Year,
		Status:            v.Status,
		MaintenanceStatus: v.MaintenanceStatus,
		Position:          pos,
		LiveStatus:        status,
		LastUpdate:        lastUpdate,
		IsStale:           stale,
	}

	if live != nil {
		out.PassengerCount = live.PassengerCount
		out.CurrentZone = ZoneOf(pos.Lat, pos.Lng)
	}
	out.IsActive = live != nil && !stale && out.PassengerCount > 0

	if d := driverByID[v.DriverID]; d != nil {
		out.Driver = &DriverInfo{ID: d.ID, Name: d.Name, Phone: d.Phone}
	}
	if r := routeByID[v.RouteID]; r != nil {
		out.Route = &RouteInfo{ID: r.ID, Name: r.Name, FromZone: r.FromZone, ToZone: r.ToZone}
	}

	// Cross-check the reported passenger count against today's ledger.
	if s.attendance != nil {
		if boarded, err := s.attendance.CountOnVehicle(v.ID); err == nil {
			out.BoardedCount = boarded
		}
	}
	return out
}
