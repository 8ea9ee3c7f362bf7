package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolbus_tracker/internal/metrics"
	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/realtime"
)

// PositionInput is one raw GPS sample from a driver device.
type PositionInput struct {
	VehicleID   uint     `json:"vehicle_id" binding:"required"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	SpeedKmh    float64  `json:"speed_kmh"`
	HeadingDeg  *float64 `json:"heading_deg"`
	AccuracyM   *float64 `json:"accuracy_m"`
	TimestampMs int64    `json:"timestamp_ms" binding:"required"`
}

// PositionService ingests GPS samples: validates, derives the live status,
// replaces the vehicle's current row, appends history and publishes the
// update to the realtime broker.
type PositionService struct {
	db     *gorm.DB
	broker realtime.Broker
	clock  Clock
	tz     *time.Location
}

func NewPositionService(db *gorm.DB, broker realtime.Broker, clock Clock, tz *time.Location) *PositionService {
	return &PositionService{db: db, broker: broker, clock: clock, tz: tz}
}

// ValidatePosition rejects out-of-range samples before any state change.
func ValidatePosition(in PositionInput) error {
	switch {
	case in.Lat < -90 || in.Lat > 90:
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrValidation, in.Lat)
	case in.Lng < -180 || in.Lng > 180:
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrValidation, in.Lng)
	case in.SpeedKmh < 0 || in.SpeedKmh > 200:
		return fmt.Errorf("%w: speed %v out of range [0,200]", ErrValidation, in.SpeedKmh)
	case in.HeadingDeg != nil && (*in.HeadingDeg < 0 || *in.HeadingDeg > 360):
		return fmt.Errorf("%w: heading %v out of range [0,360]", ErrValidation, *in.HeadingDeg)
	case in.AccuracyM != nil && *in.AccuracyM < 0:
		return fmt.Errorf("%w: accuracy %v negative", ErrValidation, *in.AccuracyM)
	case in.TimestampMs <= 0:
		return fmt.Errorf("%w: timestamp %d not positive", ErrValidation, in.TimestampMs)
	}
	return nil
}

// UpdatePosition accepts one sample. The current row is fully replaced;
// passenger count and the arrival marker survive the replace. There is no
// per-vehicle sequence check: two concurrent samples apply in arrival order
// and the later-applied write wins, which is logged when it regresses time.
func (s *PositionService) UpdatePosition(in PositionInput) (*models.LivePosition, error) {
	if err := ValidatePosition(in); err != nil {
		metrics.PositionsRejected.WithLabelValues("validation").Inc()
		return nil, err
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, in.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.PositionsRejected.WithLabelValues("unknown_vehicle").Inc()
			return nil, fmt.Errorf("%w: vehicle %d", ErrNotFound, in.VehicleID)
		}
		return nil, fmt.Errorf("fetch vehicle %d: %w", in.VehicleID, err)
	}

	now := s.clock.Now()

	var prev models.LivePosition
	prevErr := s.db.Where("vehicle_id = ?", in.VehicleID).First(&prev).Error
	hasPrev := prevErr == nil
	if hasPrev && in.TimestampMs < prev.TimestampMs {
		logrus.WithFields(logrus.Fields{
			"vehicle_id": in.VehicleID,
			"sample_ms":  in.TimestampMs,
			"stored_ms":  prev.TimestampMs,
		}).Warn("Accepted position sample older than stored one; last applied write wins.")
	}

	heading := 0.0
	if in.HeadingDeg != nil {
		heading = *in.HeadingDeg
	}
	accuracy := 0.0
	if in.AccuracyM != nil {
		accuracy = *in.AccuracyM
	}

	status := DeriveLiveStatus(in.SpeedKmh)
	if hasPrev {
		status = NextLiveStatus(prev.Status, in.SpeedKmh)
	}

	live := models.LivePosition{
		VehicleID:   in.VehicleID,
		Latitude:    in.Lat,
		Longitude:   in.Lng,
		SpeedKmh:    in.SpeedKmh,
		HeadingDeg:  heading,
		AccuracyM:   accuracy,
		TimestampMs: in.TimestampMs,
		Status:      status,
		DriverID:    vehicle.DriverID,
		RouteID:     vehicle.RouteID,
		LastUpdate:  now,
	}
	if hasPrev {
		live.PassengerCount = prev.PassengerCount
		live.ArrivedAt = prev.ArrivedAt
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vehicle_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"latitude", "longitude", "speed_kmh", "heading_deg", "accuracy_m",
			"timestamp_ms", "status", "driver_id", "route_id",
			"passenger_count", "arrived_at", "last_update", "updated_at",
		}),
	}).Create(&live).Error
	if err != nil {
		return nil, fmt.Errorf("replace live position for vehicle %d: %w", in.VehicleID, err)
	}

	if err := s.appendHistory(in, now); err != nil {
		// The current row is already committed; a lost history entry is
		// logged, not surfaced.
		logrus.WithError(err).WithField("vehicle_id", in.VehicleID).
			Error("Failed to append position history entry.")
	}

	s.broker.Publish(realtime.PositionUpdate{
		VehicleID:      live.VehicleID,
		DriverID:       live.DriverID,
		RouteID:        live.RouteID,
		Latitude:       live.Latitude,
		Longitude:      live.Longitude,
		SpeedKmh:       live.SpeedKmh,
		HeadingDeg:     live.HeadingDeg,
		Status:         live.Status,
		PassengerCount: live.PassengerCount,
		TimestampMs:    live.TimestampMs,
	})

	metrics.PositionsIngested.WithLabelValues(status).Inc()
	return &live, nil
}

func (s *PositionService) appendHistory(in PositionInput, now time.Time) error {
	heading := 0.0
	if in.HeadingDeg != nil {
		heading = *in.HeadingDeg
	}
	accuracy := 0.0
	if in.AccuracyM != nil {
		accuracy = *in.AccuracyM
	}
	entry := models.PositionHistory{
		VehicleID:   in.VehicleID,
		Day:         now.In(s.tz).Format("2006-01-02"),
		Latitude:    in.Lat,
		Longitude:   in.Lng,
		SpeedKmh:    in.SpeedKmh,
		HeadingDeg:  heading,
		AccuracyM:   accuracy,
		TimestampMs: in.TimestampMs,
		SampleTime:  time.UnixMilli(in.TimestampMs),
	}
	return s.db.Create(&entry).Error
}

// GetLive returns the current position row for a vehicle, or ErrNotFound.
func (s *PositionService) GetLive(vehicleID uint) (*models.LivePosition, error) {
	var live models.LivePosition
	if err := s.db.Where("vehicle_id = ?", vehicleID).First(&live).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no live position for vehicle %d", ErrNotFound, vehicleID)
		}
		return nil, err
	}
	return &live, nil
}

// ListLive returns every vehicle's current position row.
func (s *PositionService) ListLive() ([]models.LivePosition, error) {
	var rows []models.LivePosition
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// HistoryForDay lists a vehicle's samples for one calendar day in sample
// order. An empty day means today.
func (s *PositionService) HistoryForDay(vehicleID uint, day string) ([]models.PositionHistory, error) {
	if day == "" {
		day = s.clock.Now().In(s.tz).Format("2006-01-02")
	}
	var rows []models.PositionHistory
	err := s.db.Where("vehicle_id = ? AND day = ?", vehicleID, day).
		Order("timestamp_ms asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkArrived records the external arrival signal for a vehicle. Only the
// reconciler's timeout sweep clears it again.
func (s *PositionService) MarkArrived(vehicleID uint) error {
	now := s.clock.Now()
	res := s.db.Model(&models.LivePosition{}).
		Where("vehicle_id = ?", vehicleID).
		Updates(map[string]interface{}{
			"status":      models.LiveStatusArrived,
			"arrived_at":  now,
			"last_update": now,
		})
	if res.Error != nil {
		return fmt.Errorf("mark vehicle %d arrived: %w", vehicleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no live position for vehicle %d", ErrNotFound, vehicleID)
	}
	return nil
}
