package services

import (
	"strings"
	"testing"

	"github.com/lib/pq"

	"schoolbus_tracker/internal/models"
)

func tripRider(vehicleID uint, guardians []int64, trips ...string) models.Rider {
	return models.Rider{
		VehicleID:   vehicleID,
		GuardianIDs: pq.Int64Array(guardians),
		ActiveTrips: pq.StringArray(trips),
	}
}

func TestFilterGuardiansByTrip(t *testing.T) {
	riders := []models.Rider{
		tripRider(10, []int64{1}, models.TripMorningOutbound, models.TripEveningReturn),
		tripRider(10, []int64{2}, models.TripEveningReturn),
		tripRider(10, []int64{3}),
	}

	got := filterGuardiansByTrip(riders, models.TripMorningOutbound)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("morning_outbound guardians = %v, want [1]", got)
	}

	got = filterGuardiansByTrip(riders, models.TripEveningReturn)
	if len(got) != 2 {
		t.Errorf("evening_return guardians = %v, want two", got)
	}
}

func TestFilterGuardiansByTripDeduplicates(t *testing.T) {
	riders := []models.Rider{
		tripRider(10, []int64{1, 2}, models.TripMorningOutbound),
		tripRider(10, []int64{2}, models.TripMorningOutbound),
	}
	got := filterGuardiansByTrip(riders, models.TripMorningOutbound)
	if len(got) != 2 {
		t.Errorf("guardians = %v, want deduplicated [1 2]", got)
	}
}

func TestFilterGuardiansByTripNoneEnrolled(t *testing.T) {
	riders := []models.Rider{
		tripRider(10, []int64{1}, models.TripEveningReturn),
	}
	if got := filterGuardiansByTrip(riders, models.TripMiddayOutbound); len(got) != 0 {
		t.Errorf("guardians = %v, want none", got)
	}
}

func TestTripTemplateMorning(t *testing.T) {
	title, body := tripTemplate(models.TripMorningOutbound, "Awa Koné")
	if title != "Ramassage du matin démarré" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(body, "ramassage du matin") {
		t.Errorf("body %q does not name the trip", body)
	}
	if !strings.Contains(body, "Awa Koné") {
		t.Errorf("body %q does not name the driver", body)
	}
}

func TestTripTemplateAllSegmentsNameDriver(t *testing.T) {
	trips := []string{
		models.TripMorningOutbound,
		models.TripMiddayOutbound,
		models.TripMiddayReturn,
		models.TripEveningReturn,
	}
	for _, trip := range trips {
		title, body := tripTemplate(trip, "Issa Traoré")
		if title == "" {
			t.Errorf("%s: empty title", trip)
		}
		if !strings.Contains(body, "Issa Traoré") {
			t.Errorf("%s: body %q does not name the driver", trip, body)
		}
	}
}

func TestChunk(t *testing.T) {
	xs := []string{"a", "b", "c", "d", "e"}
	got := chunk(xs, 2)
	if len(got) != 3 {
		t.Fatalf("chunk(5,2) = %d batches, want 3", len(got))
	}
	if len(got[0]) != 2 || len(got[1]) != 2 || len(got[2]) != 1 {
		t.Errorf("batch sizes = %d,%d,%d, want 2,2,1", len(got[0]), len(got[1]), len(got[2]))
	}

	if got := chunk(nil, 10); len(got) != 0 {
		t.Errorf("chunk(nil) = %v, want empty", got)
	}
	if got := chunk([]string{"a"}, 10); len(got) != 1 || len(got[0]) != 1 {
		t.Errorf("chunk under batch size = %v, want single batch", got)
	}
}

func TestArrayLiteral(t *testing.T) {
	if got := arrayLiteral([]int64{1, 2, 3}); got != "{1,2,3}" {
		t.Errorf("arrayLiteral = %q, want {1,2,3}", got)
	}
	if got := arrayLiteral(nil); got != "{}" {
		t.Errorf("arrayLiteral(nil) = %q, want {}", got)
	}
}
