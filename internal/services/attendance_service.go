package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/metrics"
	"schoolbus_tracker/internal/models"
)

// GuardianNotifier is the notification fan-out as the ledger sees it.
// Sends are best-effort: the ledger commit never rolls back on a failed send.
type GuardianNotifier interface {
	NotifyGuardiansOfRider(rider *models.Rider, kind string, at time.Time) error
}

// RiderOnVehicle is one currently-boarded rider, for the driver's manifest.
type RiderOnVehicle struct {
	RiderID      uint       `json:"rider_id"`
	RiderName    string     `json:"rider_name"`
	BoardingTime *time.Time `json:"boarding_time"`
}

// AttendanceService owns the per-rider, per-day boarding/exit ledger.
type AttendanceService struct {
	db       *gorm.DB
	notifier GuardianNotifier
	clock    Clock
	tz       *time.Location
	cutover  int
}

func NewAttendanceService(db *gorm.DB, notifier GuardianNotifier, clock Clock, tz *time.Location, cutoverHour int) *AttendanceService {
	return &AttendanceService{db: db, notifier: notifier, clock: clock, tz: tz, cutover: cutoverHour}
}

// Board records a rider boarding. Conflicts: boarding while already boarded.
// A completed same-day record is reset to a fresh boarded cycle.
func (s *AttendanceService) Board(ev BoardingEvent) (*models.AttendanceRecord, error) {
	rider, err := s.fetchRider(ev.RiderID)
	if err != nil {
		metrics.AttendanceTransitions.WithLabelValues("board", "rejected").Inc()
		return nil, err
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}
	date := s.dateOf(ev.Timestamp)
	half := HalfOfDay(ev.Timestamp, s.tz, s.cutover)

	existing, err := s.recordForDate(ev.RiderID, date)
	if err != nil {
		return nil, err
	}

	next, err := applyBoard(existing, ev, date, half)
	if err != nil {
		metrics.AttendanceTransitions.WithLabelValues("board", "conflict").Inc()
		return nil, err
	}

	if existing == nil {
		if err := s.db.Create(next).Error; err != nil {
			// The unique (rider_id, date) index turns the concurrent
			// double-board into the same conflict the read path reports.
			var pgErr *pq.Error
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				metrics.AttendanceTransitions.WithLabelValues("board", "conflict").Inc()
				return nil, fmt.Errorf("%w: rider %d is already on vehicle %d", ErrConflict, ev.RiderID, ev.VehicleID)
			}
			return nil, fmt.Errorf("create attendance record: %w", err)
		}
	} else {
		if err := s.db.Save(next).Error; err != nil {
			return nil, fmt.Errorf("update attendance record: %w", err)
		}
	}

	metrics.AttendanceTransitions.WithLabelValues("board", "ok").Inc()
	s.notifyGuardians(rider, models.NotificationRiderBoarded, ev.Timestamp)
	return next, nil
}

// Exit records a rider leaving the vehicle. Conflicts: no same-day record
// ("must board first") or a record not in boarded state.
func (s *AttendanceService) Exit(ev BoardingEvent) (*models.AttendanceRecord, error) {
	rider, err := s.fetchRider(ev.RiderID)
	if err != nil {
		metrics.AttendanceTransitions.WithLabelValues("exit", "rejected").Inc()
		return nil, err
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}
	date := s.dateOf(ev.Timestamp)

	existing, err := s.recordForDate(ev.RiderID, date)
	if err != nil {
		return nil, err
	}

	next, err := applyExit(existing, ev)
	if err != nil {
		metrics.AttendanceTransitions.WithLabelValues("exit", "conflict").Inc()
		return nil, err
	}

	if err := s.db.Save(next).Error; err != nil {
		return nil, fmt.Errorf("update attendance record: %w", err)
	}

	metrics.AttendanceTransitions.WithLabelValues("exit", "ok").Inc()
	s.notifyGuardians(rider, models.NotificationRiderExited, ev.Timestamp)
	return next, nil
}

// Unscan marks a rider absent for the current half of the day, on the
// existing same-day row or a fresh mark-only row. The boarding cycle is left
// untouched. Only the driver assigned to the vehicle may unscan.
func (s *AttendanceService) Unscan(ev BoardingEvent) (*models.AttendanceRecord, error) {
	if _, err := s.fetchRider(ev.RiderID); err != nil {
		metrics.AttendanceTransitions.WithLabelValues("unscan", "rejected").Inc()
		return nil, err
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, ev.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AttendanceTransitions.WithLabelValues("unscan", "rejected").Inc()
			return nil, fmt.Errorf("%w: vehicle %d", ErrNotFound, ev.VehicleID)
		}
		return nil, fmt.Errorf("fetch vehicle %d: %w", ev.VehicleID, err)
	}
	if vehicle.DriverID != ev.DriverID {
		metrics.AttendanceTransitions.WithLabelValues("unscan", "rejected").Inc()
		return nil, fmt.Errorf("%w: driver %d is not assigned to vehicle %d", ErrForbidden, ev.DriverID, ev.VehicleID)
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}
	date := s.dateOf(ev.Timestamp)
	half := HalfOfDay(ev.Timestamp, s.tz, s.cutover)

	existing, err := s.recordForDate(ev.RiderID, date)
	if err != nil {
		return nil, err
	}

	next := applyUnscan(existing, ev, date, half)
	if existing == nil {
		if err := s.db.Create(next).Error; err != nil {
			return nil, fmt.Errorf("create attendance record: %w", err)
		}
	} else {
		if err := s.db.Save(next).Error; err != nil {
			return nil, fmt.Errorf("update attendance record: %w", err)
		}
	}

	metrics.AttendanceTransitions.WithLabelValues("unscan", "ok").Inc()
	logrus.WithFields(logrus.Fields{
		"rider_id":   ev.RiderID,
		"vehicle_id": ev.VehicleID,
		"half":       half,
	}).Info("Rider marked absent.")
	return next, nil
}

// RecordForDate returns the rider's ledger row for a date (today when date
// is empty), or ErrNotFound when the rider has not boarded that day.
func (s *AttendanceService) RecordForDate(riderID uint, date string) (*models.AttendanceRecord, error) {
	if date == "" {
		date = s.dateOf(s.clock.Now())
	}
	rec, err := s.recordForDate(riderID, date)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no attendance record for rider %d on %s", ErrNotFound, riderID, date)
	}
	return rec, nil
}

// RidersOnVehicle lists riders currently boarded on a vehicle today.
func (s *AttendanceService) RidersOnVehicle(vehicleID uint) ([]RiderOnVehicle, error) {
	date := s.dateOf(s.clock.Now())

	var records []models.AttendanceRecord
	err := s.db.Where("vehicle_id = ? AND date = ? AND status = ?", vehicleID, date, models.AttendanceBoarded).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]RiderOnVehicle, 0, len(records))
	for _, rec := range records {
		entry := RiderOnVehicle{RiderID: rec.RiderID, BoardingTime: rec.BoardingTime}
		var rider models.Rider
		if err := s.db.First(&rider, rec.RiderID).Error; err == nil {
			entry.RiderName = rider.FullName()
		}
		out = append(out, entry)
	}
	return out, nil
}

// CountOnVehicle counts riders currently boarded on a vehicle today.
func (s *AttendanceService) CountOnVehicle(vehicleID uint) (int64, error) {
	date := s.dateOf(s.clock.Now())
	var count int64
	err := s.db.Model(&models.AttendanceRecord{}).
		Where("vehicle_id = ? AND date = ? AND status = ?", vehicleID, date, models.AttendanceBoarded).
		Count(&count).Error
	return count, err
}

// HistoryByRider lists a rider's ledger rows in a date range, newest first.
func (s *AttendanceService) HistoryByRider(riderID uint, startDate, endDate string) ([]models.AttendanceRecord, error) {
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	var rows []models.AttendanceRecord
	err := s.db.Where("rider_id = ? AND date >= ? AND date <= ?", riderID, startDate, endDate).
		Order("date desc").
		Find(&rows).Error
	return rows, err
}

// HistoryByVehicle lists a vehicle's ledger rows in a date range, newest first.
func (s *AttendanceService) HistoryByVehicle(vehicleID uint, startDate, endDate string) ([]models.AttendanceRecord, error) {
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	var rows []models.AttendanceRecord
	err := s.db.Where("vehicle_id = ? AND date >= ? AND date <= ?", vehicleID, startDate, endDate).
		Order("date desc").
		Find(&rows).Error
	return rows, err
}

func (s *AttendanceService) fetchRider(riderID uint) (*models.Rider, error) {
	var rider models.Rider
	if err := s.db.First(&rider, riderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rider %d", ErrNotFound, riderID)
		}
		return nil, fmt.Errorf("fetch rider %d: %w", riderID, err)
	}
	return &rider, nil
}

func (s *AttendanceService) recordForDate(riderID uint, date string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db.Where("rider_id = ? AND date = ?", riderID, date).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch attendance record: %w", err)
	}
	return &rec, nil
}

func (s *AttendanceService) dateOf(t time.Time) string {
	return t.In(s.tz).Format("2006-01-02")
}

func (s *AttendanceService) notifyGuardians(rider *models.Rider, kind string, at time.Time) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyGuardiansOfRider(rider, kind, at); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"rider_id": rider.ID,
			"kind":     kind,
		}).Warn("Guardian notification failed; ledger write stands.")
	}
}
