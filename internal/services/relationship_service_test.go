package services

import (
	"testing"

	"github.com/lib/pq"

	"schoolbus_tracker/internal/models"
)

func ridersFixture(vehicleID uint, guardians ...int64) *models.Rider {
	return &models.Rider{
		VehicleID:   vehicleID,
		GuardianIDs: pq.Int64Array(guardians),
	}
}

func mutationSet(muts []indexMutation) map[indexMutation]bool {
	set := make(map[indexMutation]bool, len(muts))
	for _, m := range muts {
		set[m] = true
	}
	return set
}

func TestRelationshipDeltaCreate(t *testing.T) {
	muts := relationshipDelta(RiderChange{New: ridersFixture(10, 1, 2)})
	set := mutationSet(muts)
	if len(muts) != 2 {
		t.Fatalf("got %d mutations, want 2", len(muts))
	}
	for _, g := range []int64{1, 2} {
		if !set[indexMutation{GuardianID: g, VehicleID: 10, Add: true}] {
			t.Errorf("missing add of vehicle 10 for guardian %d", g)
		}
	}
}

func TestRelationshipDeltaDelete(t *testing.T) {
	muts := relationshipDelta(RiderChange{Old: ridersFixture(10, 1, 2)})
	set := mutationSet(muts)
	if len(muts) != 2 {
		t.Fatalf("got %d mutations, want 2", len(muts))
	}
	for _, g := range []int64{1, 2} {
		if !set[indexMutation{GuardianID: g, VehicleID: 10, Add: false}] {
			t.Errorf("missing removal of vehicle 10 for guardian %d", g)
		}
	}
}

func TestRelationshipDeltaDeleteUnassigned(t *testing.T) {
	if muts := relationshipDelta(RiderChange{Old: ridersFixture(0, 1, 2)}); len(muts) != 0 {
		t.Errorf("unassigned rider delete produced %d mutations, want 0", len(muts))
	}
}

func TestRelationshipDeltaVehicleChanged(t *testing.T) {
	muts := relationshipDelta(RiderChange{
		Old: ridersFixture(10, 1, 2),
		New: ridersFixture(20, 2, 3),
	})
	set := mutationSet(muts)
	want := []indexMutation{
		{GuardianID: 1, VehicleID: 10, Add: false},
		{GuardianID: 2, VehicleID: 10, Add: false},
		{GuardianID: 2, VehicleID: 20, Add: true},
		{GuardianID: 3, VehicleID: 20, Add: true},
	}
	if len(muts) != len(want) {
		t.Fatalf("got %d mutations, want %d: %v", len(muts), len(want), muts)
	}
	for _, m := range want {
		if !set[m] {
			t.Errorf("missing mutation %+v", m)
		}
	}
}

func TestRelationshipDeltaGuardiansChangedOnly(t *testing.T) {
	muts := relationshipDelta(RiderChange{
		Old: ridersFixture(10, 1, 2),
		New: ridersFixture(10, 2, 3),
	})
	set := mutationSet(muts)
	want := []indexMutation{
		{GuardianID: 3, VehicleID: 10, Add: true},
		{GuardianID: 1, VehicleID: 10, Add: false},
	}
	if len(muts) != len(want) {
		t.Fatalf("got %d mutations, want %d: %v", len(muts), len(want), muts)
	}
	for _, m := range want {
		if !set[m] {
			t.Errorf("missing mutation %+v", m)
		}
	}
}

func TestRelationshipDeltaNoChange(t *testing.T) {
	muts := relationshipDelta(RiderChange{
		Old: ridersFixture(10, 1, 2),
		New: ridersFixture(10, 1, 2),
	})
	if len(muts) != 0 {
		t.Errorf("no-op write produced %d mutations, want 0", len(muts))
	}
}

func TestRelationshipDeltaVehicleUnassignedOnUpdate(t *testing.T) {
	muts := relationshipDelta(RiderChange{
		Old: ridersFixture(10, 1),
		New: ridersFixture(0, 1),
	})
	set := mutationSet(muts)
	if len(muts) != 1 || !set[indexMutation{GuardianID: 1, VehicleID: 10, Add: false}] {
		t.Errorf("unassigning vehicle: got %v, want single removal", muts)
	}
}
