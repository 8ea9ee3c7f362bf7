package jobs

import (
	"testing"
	"time"

	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/services"
)

func TestArrivalExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	timeout := 15 * time.Minute

	if !arrivalExpired(nil, now, timeout) {
		t.Error("missing arrival timestamp should expire immediately")
	}

	fresh := now.Add(-5 * time.Minute)
	if arrivalExpired(&fresh, now, timeout) {
		t.Error("5-minute-old arrival should not expire")
	}

	edge := now.Add(-15 * time.Minute)
	if !arrivalExpired(&edge, now, timeout) {
		t.Error("arrival exactly at the timeout should expire")
	}

	old := now.Add(-time.Hour)
	if !arrivalExpired(&old, now, timeout) {
		t.Error("hour-old arrival should expire")
	}
}

func TestUnscannedRiders(t *testing.T) {
	riders := []models.Rider{
		{FirstName: "A"},
		{FirstName: "B"},
		{FirstName: "C"},
	}
	riders[0].ID = 1
	riders[1].ID = 2
	riders[2].ID = 3

	records := map[uint]models.AttendanceRecord{
		1: {RiderID: 1, MorningStatus: models.ScanPresent},
		2: {RiderID: 2}, // record exists but no mark
	}

	got := unscannedRiders(riders, records, services.HalfMorning)
	if len(got) != 2 {
		t.Fatalf("got %d unscanned, want 2", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("unscanned ids = %d,%d, want 2,3", got[0].ID, got[1].ID)
	}
}

func TestUnscannedRidersEveningIgnoresMorningMark(t *testing.T) {
	riders := []models.Rider{{FirstName: "A"}}
	riders[0].ID = 1
	records := map[uint]models.AttendanceRecord{
		1: {RiderID: 1, MorningStatus: models.ScanPresent},
	}
	got := unscannedRiders(riders, records, services.HalfEvening)
	if len(got) != 1 {
		t.Errorf("morning-only scan should count as unscanned in the evening half")
	}
}

func TestUnscannedRidersAbsentMarkIsUnscanned(t *testing.T) {
	riders := []models.Rider{{FirstName: "A"}}
	riders[0].ID = 1
	records := map[uint]models.AttendanceRecord{
		1: {RiderID: 1, MorningStatus: models.ScanAbsent},
	}
	got := unscannedRiders(riders, records, services.HalfMorning)
	if len(got) != 1 {
		t.Fatalf("got %d unscanned, want 1", len(got))
	}
	if got[0].ID != 1 {
		t.Errorf("unscanned id = %d, want 1", got[0].ID)
	}
}

func TestUnscannedSeverity(t *testing.T) {
	if got := unscannedSeverity(3, 3); got != models.SeverityMedium {
		t.Errorf("severity at threshold = %q, want MEDIUM", got)
	}
	if got := unscannedSeverity(4, 3); got != models.SeverityHigh {
		t.Errorf("severity above threshold = %q, want HIGH", got)
	}
	if got := unscannedSeverity(1, 3); got != models.SeverityMedium {
		t.Errorf("severity below threshold = %q, want MEDIUM", got)
	}
}
