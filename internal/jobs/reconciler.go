// Package jobs runs the periodic reconciliation sweeps: arrival timeout,
// unscanned-rider detection and the relationship index rebuild. Each sweep
// is a full-state pass, so a missed tick is caught up by the next one.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/config"
	"schoolbus_tracker/internal/metrics"
	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/services"
)

type Reconciler struct {
	db        *gorm.DB
	relations *services.RelationshipService
	clock     services.Clock
	cfg       config.Settings
}

func NewReconciler(db *gorm.DB, relations *services.RelationshipService, clock services.Clock, cfg config.Settings) *Reconciler {
	return &Reconciler{db: db, relations: relations, clock: clock, cfg: cfg}
}

// Start runs the sweep loops until ctx is cancelled. Each loop owns its own
// ticker so a slow sweep never delays the others.
func (r *Reconciler) Start(ctx context.Context) {
	go r.loop(ctx, "arrival", r.cfg.ArrivalSweepEvery, r.SweepArrivals)
	go r.loop(ctx, "unscanned", r.cfg.UnscannedSweepEvery, r.SweepUnscanned)
	go r.loop(ctx, "index_rebuild", r.cfg.IndexRebuildEvery, r.relations.RebuildIndex)
}

func (r *Reconciler) loop(ctx context.Context, name string, every time.Duration, sweep func() error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.WithField("sweep", name).Info("Sweep loop stopped.")
			return
		case <-ticker.C:
			start := time.Now()
			if err := sweep(); err != nil {
				logrus.WithError(err).WithField("sweep", name).Error("Sweep failed.")
			}
			metrics.SweepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
	}
}

// arrivalExpired reports whether an arrived vehicle should be forced back to
// stopped. A missing ArrivedAt means the arrival was recorded before the
// timestamp column existed (or got lost); those clear immediately rather
// than sticking forever.
func arrivalExpired(arrivedAt *time.Time, now time.Time, timeout time.Duration) bool {
	if arrivedAt == nil {
		return true
	}
	return now.Sub(*arrivedAt) >= timeout
}

// SweepArrivals clears "arrived" statuses older than the arrival timeout.
// This is the only writer that ever leaves the arrived state.
func (r *Reconciler) SweepArrivals() error {
	now := r.clock.Now()

	var arrived []models.LivePosition
	err := r.db.Where("status = ?", models.LiveStatusArrived).Find(&arrived).Error
	if err != nil {
		return fmt.Errorf("fetch arrived vehicles: %w", err)
	}

	var expired []uint
	for _, lp := range arrived {
		if arrivalExpired(lp.ArrivedAt, now, r.cfg.ArrivalTimeout) {
			expired = append(expired, lp.ID)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	err = r.db.Model(&models.LivePosition{}).
		Where("id IN ?", expired).
		Updates(map[string]interface{}{
			"status":      models.LiveStatusStopped,
			"arrived_at":  nil,
			"last_update": now,
		}).Error
	if err != nil {
		return fmt.Errorf("clear expired arrivals: %w", err)
	}
	logrus.WithField("count", len(expired)).Info("Cleared expired arrival statuses.")
	return nil
}

// unscannedRiders returns the riders without a present mark for the given
// half of the day. records is keyed by rider id; a rider with no record at
// all is unscanned by definition. An absent mark does not count as scanned.
func unscannedRiders(riders []models.Rider, records map[uint]models.AttendanceRecord, half string) []models.Rider {
	var out []models.Rider
	for _, rd := range riders {
		rec, ok := records[rd.ID]
		if !ok {
			out = append(out, rd)
			continue
		}
		mark := rec.MorningStatus
		if half == services.HalfEvening {
			mark = rec.EveningStatus
		}
		if mark != models.ScanPresent {
			out = append(out, rd)
		}
	}
	return out
}

// unscannedSeverity escalates to HIGH once the count passes the threshold.
func unscannedSeverity(count, threshold int) string {
	if count > threshold {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

// SweepUnscanned finds riders with no scan mark for the current half of the
// day on every active vehicle, and replaces each vehicle's unscanned alert
// with a fresh snapshot. A vehicle is active when its position is recent
// enough; parked vehicles produce no alerts. Failures are isolated per
// vehicle.
func (r *Reconciler) SweepUnscanned() error {
	now := r.clock.Now()
	half := services.HalfOfDay(now, r.cfg.Timezone, r.cfg.EveningCutoverHour)
	today := now.In(r.cfg.Timezone).Format("2006-01-02")

	var live []models.LivePosition
	err := r.db.Where("last_update > ?", now.Add(-r.cfg.ActiveWindow)).Find(&live).Error
	if err != nil {
		return fmt.Errorf("fetch active vehicles: %w", err)
	}

	failed := 0
	for _, lp := range live {
		if err := r.sweepVehicleUnscanned(lp.VehicleID, today, half); err != nil {
			failed++
			logrus.WithError(err).WithField("vehicle_id", lp.VehicleID).
				Error("Unscanned sweep failed for vehicle; continuing.")
		}
	}
	if failed > 0 {
		return fmt.Errorf("unscanned sweep failed for %d of %d vehicles", failed, len(live))
	}
	return nil
}

func (r *Reconciler) sweepVehicleUnscanned(vehicleID uint, today, half string) error {
	var riders []models.Rider
	err := r.db.Where("vehicle_id = ? AND is_active = ?", vehicleID, true).Find(&riders).Error
	if err != nil {
		return fmt.Errorf("fetch riders: %w", err)
	}

	var records []models.AttendanceRecord
	if len(riders) > 0 {
		ids := make([]uint, 0, len(riders))
		for _, rd := range riders {
			ids = append(ids, rd.ID)
		}
		err = r.db.Where("rider_id IN ? AND date = ?", ids, today).Find(&records).Error
		if err != nil {
			return fmt.Errorf("fetch attendance: %w", err)
		}
	}
	byRider := make(map[uint]models.AttendanceRecord, len(records))
	for _, rec := range records {
		byRider[rec.RiderID] = rec
	}

	unscanned := unscannedRiders(riders, byRider, half)

	// Replace the previous snapshot either way: stale alerts for a now
	// fully-scanned vehicle must disappear.
	err = r.db.Where("vehicle_id = ? AND type = ?", vehicleID, models.AlertUnscannedRider).
		Unscoped().Delete(&models.Alert{}).Error
	if err != nil {
		return fmt.Errorf("delete previous alert: %w", err)
	}
	if len(unscanned) == 0 {
		return nil
	}

	var vehicle models.Vehicle
	if err := r.db.First(&vehicle, vehicleID).Error; err != nil {
		return fmt.Errorf("fetch vehicle: %w", err)
	}

	riderIDs := make(pq.Int64Array, 0, len(unscanned))
	for _, rd := range unscanned {
		riderIDs = append(riderIDs, int64(rd.ID))
	}
	alert := models.Alert{
		Type:      models.AlertUnscannedRider,
		VehicleID: vehicleID,
		BusNumber: vehicle.BusNumber,
		Severity:  unscannedSeverity(len(unscanned), r.cfg.UnscannedHighThreshold),
		Message:   fmt.Sprintf("%d élève(s) non scanné(s) sur le bus %d.", len(unscanned), vehicle.BusNumber),
		RiderIDs:  riderIDs,
	}
	if err := r.db.Create(&alert).Error; err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicleID,
		"count":      len(unscanned),
		"severity":   alert.Severity,
	}).Warn("Unscanned riders detected on active vehicle.")
	return nil
}

// ListAlerts returns the current alert snapshot, newest first.
func (r *Reconciler) ListAlerts() ([]models.Alert, error) {
	var out []models.Alert
	err := r.db.Order("created_at desc").Find(&out).Error
	return out, err
}
