package services

import (
	"math"
	"testing"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Abidjan Plateau to the airport, roughly 15 km.
	got := haversineKm(5.3364, -4.0267, 5.2614, -3.9263)
	if math.Abs(got-14) > 2 {
		t.Errorf("haversineKm = %v km, want about 14", got)
	}
}

func TestHaversineZero(t *testing.T) {
	if got := haversineKm(5.3, -4.0, 5.3, -4.0); got != 0 {
		t.Errorf("distance to self = %v, want 0", got)
	}
}

func TestEstimateETAStationary(t *testing.T) {
	if got := EstimateETAMinutes(5.3, -4.0, 5.4, -4.1, 0); got != -1 {
		t.Errorf("ETA at speed 0 = %d, want -1", got)
	}
}

func TestZoneOf(t *testing.T) {
	if got := ZoneOf(5.3365, -4.0872); got != "Yopougon" {
		t.Errorf("ZoneOf(Yopougon center) = %q", got)
	}
	if got := ZoneOf(5.3473, -3.9875); got != "Cocody" {
		t.Errorf("ZoneOf(Cocody center) = %q", got)
	}
	// Open water south of the city belongs to no commune.
	if got := ZoneOf(5.0, -4.0); got != "En transit" {
		t.Errorf("ZoneOf(offshore) = %q, want En transit", got)
	}
}

func TestEstimateETAMoving(t *testing.T) {
	// ~11.1 km due north at 60 km/h is about 11 minutes.
	got := EstimateETAMinutes(5.0, -4.0, 5.1, -4.0, 60)
	if got < 10 || got > 12 {
		t.Errorf("ETA = %d minutes, want about 11", got)
	}
}
