package services

import (
	"testing"
	"time"

	"schoolbus_tracker/internal/models"
)

const (
	testFallbackLat = 5.3364
	testFallbackLng = -4.0267
)

func TestResolvePositionNoSample(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	pos, status, lastUpdate, stale := resolvePosition(nil, now, 120*time.Second, testFallbackLat, testFallbackLng)
	if !stale {
		t.Error("absent sample should be stale")
	}
	if status != models.LiveStatusStopped {
		t.Errorf("status = %q, want stopped", status)
	}
	if lastUpdate != nil {
		t.Errorf("lastUpdate = %v, want nil", lastUpdate)
	}
	if pos.Lat != testFallbackLat || pos.Lng != testFallbackLng {
		t.Errorf("position = (%v,%v), want fallback", pos.Lat, pos.Lng)
	}
}

func TestResolvePositionFreshSample(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	live := &models.LivePosition{
		Latitude:    5.40,
		Longitude:   -4.10,
		SpeedKmh:    32,
		Status:      models.LiveStatusEnRoute,
		TimestampMs: now.Add(-30 * time.Second).UnixMilli(),
		LastUpdate:  now.Add(-30 * time.Second),
	}
	pos, status, lastUpdate, stale := resolvePosition(live, now, 120*time.Second, testFallbackLat, testFallbackLng)
	if stale {
		t.Error("fresh sample flagged stale")
	}
	if status != models.LiveStatusEnRoute {
		t.Errorf("status = %q, want en_route", status)
	}
	if pos.Lat != 5.40 || pos.Lng != -4.10 {
		t.Errorf("position = (%v,%v), want sample coords", pos.Lat, pos.Lng)
	}
	if lastUpdate == nil || !lastUpdate.Equal(live.LastUpdate) {
		t.Errorf("lastUpdate = %v, want %v", lastUpdate, live.LastUpdate)
	}
}

func TestResolvePositionStaleSample(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sampleAt := now.Add(-3 * time.Minute)
	live := &models.LivePosition{
		Latitude:    5.40,
		Longitude:   -4.10,
		Status:      models.LiveStatusEnRoute,
		TimestampMs: sampleAt.UnixMilli(),
		LastUpdate:  sampleAt,
	}
	pos, status, lastUpdate, stale := resolvePosition(live, now, 120*time.Second, testFallbackLat, testFallbackLng)
	if !stale {
		t.Error("old sample should be stale")
	}
	if status != models.LiveStatusStopped {
		t.Errorf("status = %q, want forced stopped", status)
	}
	if pos.Lat != testFallbackLat || pos.Lng != testFallbackLng {
		t.Errorf("position = (%v,%v), want fallback", pos.Lat, pos.Lng)
	}
	if pos.TimestampMs != sampleAt.UnixMilli() {
		t.Error("original sample time not preserved on stale fallback")
	}
	if lastUpdate == nil || !lastUpdate.Equal(sampleAt) {
		t.Errorf("lastUpdate = %v, want original %v", lastUpdate, sampleAt)
	}
}

func TestResolvePositionWindowBoundary(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	live := &models.LivePosition{
		Status:      models.LiveStatusIdle,
		TimestampMs: now.Add(-120 * time.Second).UnixMilli(),
		LastUpdate:  now.Add(-120 * time.Second),
	}
	// Exactly at the window the sample is already stale.
	_, status, _, stale := resolvePosition(live, now, 120*time.Second, testFallbackLat, testFallbackLng)
	if !stale || status != models.LiveStatusStopped {
		t.Errorf("sample at window edge: stale=%v status=%q, want stale stopped", stale, status)
	}
}

func TestEnrichCurrentZone(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc := &FleetService{
		clock:       FixedClock{T: now},
		staleWindow: 120 * time.Second,
		fallbackLat: testFallbackLat,
		fallbackLng: testFallbackLng,
	}

	live := &models.LivePosition{
		VehicleID:   1,
		Latitude:    5.3473,
		Longitude:   -3.9875,
		Status:      models.LiveStatusEnRoute,
		TimestampMs: now.Add(-10 * time.Second).UnixMilli(),
		LastUpdate:  now.Add(-10 * time.Second),
	}
	v := models.Vehicle{}
	v.ID = 1

	out := svc.enrich(v, live, nil, nil, nil, now)
	if out.CurrentZone != "Cocody" {
		t.Errorf("CurrentZone = %q, want Cocody", out.CurrentZone)
	}

	out = svc.enrich(v, nil, nil, nil, nil, now)
	if out.CurrentZone != "" {
		t.Errorf("CurrentZone without a sample = %q, want empty", out.CurrentZone)
	}
}
