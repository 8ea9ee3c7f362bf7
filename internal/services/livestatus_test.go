package services

import (
	"testing"

	"schoolbus_tracker/internal/models"
)

func TestDeriveLiveStatus(t *testing.T) {
	cases := []struct {
		speed float64
		want  string
	}{
		{0, models.LiveStatusStopped},
		{0.1, models.LiveStatusIdle},
		{5, models.LiveStatusIdle},
		{5.1, models.LiveStatusEnRoute},
		{60, models.LiveStatusEnRoute},
	}
	for _, tc := range cases {
		if got := DeriveLiveStatus(tc.speed); got != tc.want {
			t.Errorf("DeriveLiveStatus(%v) = %q, want %q", tc.speed, got, tc.want)
		}
	}
}

func TestNextLiveStatusArrivedIsSticky(t *testing.T) {
	for _, speed := range []float64{0, 3, 40} {
		if got := NextLiveStatus(models.LiveStatusArrived, speed); got != models.LiveStatusArrived {
			t.Errorf("NextLiveStatus(arrived, %v) = %q, want arrived", speed, got)
		}
	}
}

func TestNextLiveStatusNonArrivedFollowsSpeed(t *testing.T) {
	if got := NextLiveStatus(models.LiveStatusEnRoute, 0); got != models.LiveStatusStopped {
		t.Errorf("NextLiveStatus(en_route, 0) = %q, want stopped", got)
	}
	if got := NextLiveStatus(models.LiveStatusStopped, 30); got != models.LiveStatusEnRoute {
		t.Errorf("NextLiveStatus(stopped, 30) = %q, want en_route", got)
	}
}
