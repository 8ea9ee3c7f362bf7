package services

import (
	"errors"
	"testing"
	"time"

	"schoolbus_tracker/internal/models"
)

func boardEvent(riderID, vehicleID uint, at time.Time) BoardingEvent {
	lat, lng := 5.34, -4.03
	return BoardingEvent{
		RiderID:   riderID,
		VehicleID: vehicleID,
		DriverID:  7,
		Timestamp: at,
		Lat:       &lat,
		Lng:       &lng,
	}
}

func TestApplyBoardFirstScanOfDay(t *testing.T) {
	at := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	rec, err := applyBoard(nil, boardEvent(1, 10, at), "2026-03-02", HalfMorning)
	if err != nil {
		t.Fatalf("applyBoard: %v", err)
	}
	if rec.Status != models.AttendanceBoarded {
		t.Errorf("status = %q, want boarded", rec.Status)
	}
	if rec.BoardingTime == nil || !rec.BoardingTime.Equal(at) {
		t.Errorf("boarding time = %v, want %v", rec.BoardingTime, at)
	}
	if rec.MorningStatus != models.ScanPresent {
		t.Errorf("morning status = %q, want present", rec.MorningStatus)
	}
	if rec.EveningStatus != "" {
		t.Errorf("evening status = %q, want empty", rec.EveningStatus)
	}
}

func TestApplyBoardWhileBoardedConflicts(t *testing.T) {
	at := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	existing := &models.AttendanceRecord{RiderID: 1, VehicleID: 10, Status: models.AttendanceBoarded}
	_, err := applyBoard(existing, boardEvent(1, 10, at), "2026-03-02", HalfMorning)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApplyBoardAfterCompletionResetsCycle(t *testing.T) {
	morning := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	exitLat, exitLng := 5.35, -4.01

	existing := &models.AttendanceRecord{
		RiderID:       1,
		VehicleID:     10,
		Status:        models.AttendanceCompleted,
		BoardingTime:  &morning,
		ExitTime:      &morning,
		ExitLat:       &exitLat,
		ExitLng:       &exitLng,
		MorningStatus: models.ScanPresent,
	}
	rec, err := applyBoard(existing, boardEvent(1, 10, evening), "2026-03-02", HalfEvening)
	if err != nil {
		t.Fatalf("applyBoard: %v", err)
	}
	if rec.Status != models.AttendanceBoarded {
		t.Errorf("status = %q, want boarded", rec.Status)
	}
	if rec.ExitTime != nil || rec.ExitLat != nil || rec.ExitLng != nil {
		t.Error("exit fields not cleared on re-board")
	}
	if rec.BoardingTime == nil || !rec.BoardingTime.Equal(evening) {
		t.Errorf("boarding time = %v, want %v", rec.BoardingTime, evening)
	}
	if rec.MorningStatus != models.ScanPresent {
		t.Error("morning scan mark lost on re-board")
	}
	if rec.EveningStatus != models.ScanPresent {
		t.Error("evening scan mark not set on re-board")
	}
}

func TestApplyExitWithoutBoarding(t *testing.T) {
	at := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	_, err := applyExit(nil, boardEvent(1, 10, at))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApplyExitAfterCompletionConflicts(t *testing.T) {
	at := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	existing := &models.AttendanceRecord{RiderID: 1, Status: models.AttendanceCompleted}
	_, err := applyExit(existing, boardEvent(1, 10, at))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApplyExitCompletesRecord(t *testing.T) {
	at := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	existing := &models.AttendanceRecord{RiderID: 1, VehicleID: 10, Status: models.AttendanceBoarded}
	rec, err := applyExit(existing, boardEvent(1, 10, at))
	if err != nil {
		t.Fatalf("applyExit: %v", err)
	}
	if rec.Status != models.AttendanceCompleted {
		t.Errorf("status = %q, want completed", rec.Status)
	}
	if rec.ExitTime == nil || !rec.ExitTime.Equal(at) {
		t.Errorf("exit time = %v, want %v", rec.ExitTime, at)
	}
}

func TestApplyUnscanNoRecordCreatesMarkOnlyRow(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rec := applyUnscan(nil, boardEvent(1, 10, at), "2026-03-02", HalfMorning)
	if rec.MorningStatus != models.ScanAbsent {
		t.Errorf("morning status = %q, want absent", rec.MorningStatus)
	}
	if rec.Status != "" {
		t.Errorf("status = %q, want empty (no boarding cycle)", rec.Status)
	}
	if rec.BoardingTime != nil {
		t.Error("mark-only row should have no boarding time")
	}
}

func TestApplyUnscanKeepsBoardingCycle(t *testing.T) {
	at := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	boarded := at.Add(-time.Hour)
	existing := &models.AttendanceRecord{
		RiderID:       1,
		VehicleID:     10,
		Status:        models.AttendanceBoarded,
		BoardingTime:  &boarded,
		MorningStatus: models.ScanPresent,
	}
	rec := applyUnscan(existing, boardEvent(1, 10, at), "2026-03-02", HalfEvening)
	if rec.EveningStatus != models.ScanAbsent {
		t.Errorf("evening status = %q, want absent", rec.EveningStatus)
	}
	if rec.MorningStatus != models.ScanPresent {
		t.Errorf("morning status = %q, want untouched present", rec.MorningStatus)
	}
	if rec.Status != models.AttendanceBoarded || rec.BoardingTime == nil {
		t.Error("boarding cycle must survive an absent marking")
	}
}

func TestApplyBoardAfterAbsentMarkStartsCycle(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	existing := &models.AttendanceRecord{
		RiderID:       1,
		Date:          "2026-03-02",
		MorningStatus: models.ScanAbsent,
	}
	rec, err := applyBoard(existing, boardEvent(1, 10, at), "2026-03-02", HalfMorning)
	if err != nil {
		t.Fatalf("applyBoard: %v", err)
	}
	if rec.Status != models.AttendanceBoarded {
		t.Errorf("status = %q, want boarded", rec.Status)
	}
	if rec.MorningStatus != models.ScanPresent {
		t.Errorf("morning status = %q, want present after boarding", rec.MorningStatus)
	}
}

func TestHalfOfDay(t *testing.T) {
	tz, err := time.LoadLocation("Africa/Abidjan")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	morning := time.Date(2026, 3, 2, 13, 59, 0, 0, tz)
	if got := HalfOfDay(morning, tz, 14); got != HalfMorning {
		t.Errorf("HalfOfDay(13:59) = %q, want morning", got)
	}
	evening := time.Date(2026, 3, 2, 14, 0, 0, 0, tz)
	if got := HalfOfDay(evening, tz, 14); got != HalfEvening {
		t.Errorf("HalfOfDay(14:00) = %q, want evening", got)
	}
}
