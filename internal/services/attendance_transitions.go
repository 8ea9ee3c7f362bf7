package services

import (
	"fmt"
	"time"

	"schoolbus_tracker/internal/models"
)

// BoardingEvent is one board or exit call from a driver device.
type BoardingEvent struct {
	RiderID   uint      `json:"rider_id" binding:"required"`
	VehicleID uint      `json:"vehicle_id" binding:"required"`
	DriverID  uint      `json:"driver_id" binding:"required"`
	Timestamp time.Time `json:"timestamp"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	Notes     string    `json:"notes"`
}

const (
	HalfMorning = "morning"
	HalfEvening = "evening"
)

// applyBoard computes the ledger transition for a board call against the
// same-day record (nil when the rider has not boarded today). It mutates
// nothing; the caller persists the returned record.
func applyBoard(existing *models.AttendanceRecord, ev BoardingEvent, date, half string) (*models.AttendanceRecord, error) {
	if existing == nil {
		rec := &models.AttendanceRecord{
			RiderID:      ev.RiderID,
			Date:         date,
			VehicleID:    ev.VehicleID,
			DriverID:     ev.DriverID,
			Status:       models.AttendanceBoarded,
			BoardingTime: &ev.Timestamp,
			BoardingLat:  ev.Lat,
			BoardingLng:  ev.Lng,
			Notes:        ev.Notes,
		}
		setScanMark(rec, half)
		return rec, nil
	}

	switch existing.Status {
	case models.AttendanceBoarded:
		return nil, fmt.Errorf("%w: rider %d is already on vehicle %d", ErrConflict, ev.RiderID, existing.VehicleID)
	case models.AttendanceCompleted, "":
		// Same-day re-boarding after completion resets the cycle on the
		// existing row rather than opening a second one. An empty status is
		// a mark-only row left by an absent marking; boarding starts the
		// cycle on it.
		rec := *existing
		rec.Status = models.AttendanceBoarded
		rec.VehicleID = ev.VehicleID
		rec.DriverID = ev.DriverID
		rec.BoardingTime = &ev.Timestamp
		rec.BoardingLat = ev.Lat
		rec.BoardingLng = ev.Lng
		rec.ExitTime = nil
		rec.ExitLat = nil
		rec.ExitLng = nil
		if ev.Notes != "" {
			rec.Notes = ev.Notes
		}
		setScanMark(&rec, half)
		return &rec, nil
	default:
		return nil, fmt.Errorf("%w: attendance record for rider %d has unknown status %q", ErrConflict, ev.RiderID, existing.Status)
	}
}

// applyExit computes the ledger transition for an exit call.
func applyExit(existing *models.AttendanceRecord, ev BoardingEvent) (*models.AttendanceRecord, error) {
	if existing == nil {
		return nil, fmt.Errorf("%w: rider %d must board first", ErrConflict, ev.RiderID)
	}
	if existing.Status != models.AttendanceBoarded {
		return nil, fmt.Errorf("%w: rider %d is not currently on vehicle", ErrConflict, ev.RiderID)
	}

	rec := *existing
	rec.Status = models.AttendanceCompleted
	rec.ExitTime = &ev.Timestamp
	rec.ExitLat = ev.Lat
	rec.ExitLng = ev.Lng
	return &rec, nil
}

// applyUnscan sets the absent mark for the half of the day, creating a
// mark-only row when the rider has no same-day record. Boarding fields are
// never altered.
func applyUnscan(existing *models.AttendanceRecord, ev BoardingEvent, date, half string) *models.AttendanceRecord {
	if existing == nil {
		rec := &models.AttendanceRecord{
			RiderID:   ev.RiderID,
			Date:      date,
			VehicleID: ev.VehicleID,
			DriverID:  ev.DriverID,
		}
		setAbsentMark(rec, half)
		return rec
	}
	rec := *existing
	setAbsentMark(&rec, half)
	return &rec
}

func setAbsentMark(rec *models.AttendanceRecord, half string) {
	if half == HalfEvening {
		rec.EveningStatus = models.ScanAbsent
	} else {
		rec.MorningStatus = models.ScanAbsent
	}
}

func setScanMark(rec *models.AttendanceRecord, half string) {
	if half == HalfEvening {
		rec.EveningStatus = models.ScanPresent
	} else {
		rec.MorningStatus = models.ScanPresent
	}
}

// HalfOfDay selects morning vs evening by local hour against the cutover.
func HalfOfDay(t time.Time, tz *time.Location, cutoverHour int) string {
	if t.In(tz).Hour() < cutoverHour {
		return HalfMorning
	}
	return HalfEvening
}
