package services

import (
	"fmt"
	"sort"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
)

// RiderChange is the before/after pair delivered on every rider write.
// Old is nil on create, New is nil on delete.
type RiderChange struct {
	Old *models.Rider
	New *models.Rider
}

// indexMutation is one set-union or set-removal on a guardian's
// assigned-vehicle index.
type indexMutation struct {
	GuardianID int64
	VehicleID  int64
	Add        bool
}

// relationshipDelta computes the index mutations implied by a rider change.
// Pure: the same (old,new) pair always yields the same mutation set, and
// every mutation is a set operation, so reapplying converges.
func relationshipDelta(change RiderChange) []indexMutation {
	var muts []indexMutation

	old, latest := change.Old, change.New

	// Deletion: drop the old vehicle from every old guardian.
	if latest == nil {
		if old == nil || old.VehicleID == 0 {
			return nil
		}
		for _, g := range old.GuardianIDs {
			muts = append(muts, indexMutation{GuardianID: g, VehicleID: int64(old.VehicleID), Add: false})
		}
		return muts
	}

	var oldGuardians, oldVehicle = []int64{}, uint(0)
	if old != nil {
		oldGuardians, oldVehicle = old.GuardianIDs, old.VehicleID
	}
	added := diffIDs(latest.GuardianIDs, oldGuardians)
	removed := diffIDs(oldGuardians, latest.GuardianIDs)

	if oldVehicle != latest.VehicleID {
		if oldVehicle != 0 {
			for _, g := range oldGuardians {
				muts = append(muts, indexMutation{GuardianID: g, VehicleID: int64(oldVehicle), Add: false})
			}
		}
		if latest.VehicleID != 0 {
			for _, g := range latest.GuardianIDs {
				muts = append(muts, indexMutation{GuardianID: g, VehicleID: int64(latest.VehicleID), Add: true})
			}
		}
		return muts
	}

	// Vehicle unchanged: reconcile only the guardian-set difference.
	if latest.VehicleID != 0 {
		for _, g := range added {
			muts = append(muts, indexMutation{GuardianID: g, VehicleID: int64(latest.VehicleID), Add: true})
		}
		for _, g := range removed {
			muts = append(muts, indexMutation{GuardianID: g, VehicleID: int64(latest.VehicleID), Add: false})
		}
	}
	return muts
}

// diffIDs returns the ids in a that are not in b.
func diffIDs(a, b []int64) []int64 {
	inB := make(map[int64]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []int64
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// RelationshipService keeps User.AssignedBusIDs consistent with the riders
// table. The fast path is the per-write delta; RebuildIndex is the periodic
// full repair that bounds how long a partial failure can linger.
type RelationshipService struct {
	db *gorm.DB
}

func NewRelationshipService(db *gorm.DB) *RelationshipService {
	return &RelationshipService{db: db}
}

// RiderChanged applies the index mutations for one rider write. A failing
// guardian is logged and skipped so the rest of the batch still applies;
// the error reports how many mutations failed.
func (s *RelationshipService) RiderChanged(change RiderChange) error {
	muts := relationshipDelta(change)
	failed := 0
	for _, m := range muts {
		if err := s.apply(m); err != nil {
			failed++
			logrus.WithError(err).WithFields(logrus.Fields{
				"guardian_id": m.GuardianID,
				"vehicle_id":  m.VehicleID,
				"add":         m.Add,
			}).Error("Relationship index mutation failed; continuing batch.")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d relationship index mutations failed", failed, len(muts))
	}
	return nil
}

// apply runs one mutation as idempotent array SQL: array_remove is a no-op
// when absent, and the append is guarded against duplicates.
func (s *RelationshipService) apply(m indexMutation) error {
	if m.Add {
		return s.db.Exec(
			`UPDATE users
			 SET assigned_bus_ids = array_append(coalesce(assigned_bus_ids, '{}'), ?::bigint)
			 WHERE id = ? AND NOT (?::bigint = ANY(coalesce(assigned_bus_ids, '{}')))`,
			m.VehicleID, m.GuardianID, m.VehicleID,
		).Error
	}
	return s.db.Exec(
		`UPDATE users
		 SET assigned_bus_ids = array_remove(coalesce(assigned_bus_ids, '{}'), ?::bigint)
		 WHERE id = ?`,
		m.VehicleID, m.GuardianID,
	).Error
}

// RebuildIndex recomputes every guardian's vehicle set from the riders
// table and overwrites the stored arrays. Run periodically: a mutation lost
// to a partial batch failure is repaired on the next pass instead of
// lingering until the rider happens to be written again.
func (s *RelationshipService) RebuildIndex() error {
	var riders []models.Rider
	if err := s.db.Where("is_active = ? AND vehicle_id <> 0", true).Find(&riders).Error; err != nil {
		return fmt.Errorf("fetch active riders: %w", err)
	}

	desired := map[int64]map[int64]struct{}{}
	for _, r := range riders {
		for _, g := range r.GuardianIDs {
			if desired[g] == nil {
				desired[g] = map[int64]struct{}{}
			}
			desired[g][int64(r.VehicleID)] = struct{}{}
		}
	}

	var guardians []models.User
	if err := s.db.Where("role = ?", "guardian").Find(&guardians).Error; err != nil {
		return fmt.Errorf("fetch guardians: %w", err)
	}

	failed := 0
	for _, g := range guardians {
		want := make(pq.Int64Array, 0, len(desired[int64(g.ID)]))
		for vid := range desired[int64(g.ID)] {
			want = append(want, vid)
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

		err := s.db.Model(&models.User{}).
			Where("id = ?", g.ID).
			Update("assigned_bus_ids", want).Error
		if err != nil {
			failed++
			logrus.WithError(err).WithField("guardian_id", g.ID).
				Error("Relationship index rebuild failed for guardian; continuing.")
		}
	}
	if failed > 0 {
		return fmt.Errorf("index rebuild failed for %d guardians", failed)
	}
	logrus.WithField("guardians", len(guardians)).Info("Relationship index rebuilt.")
	return nil
}
