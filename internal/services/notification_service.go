package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/metrics"
	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/push"
)

// fcmBatchSize is the gateway's multicast fan-out limit per call.
const fcmBatchSize = 10

// NotificationService persists notifications and fans them out to device
// tokens. The record is the source of truth: it is written before any push
// attempt and never rolled back on delivery failure.
type NotificationService struct {
	db      *gorm.DB
	gateway push.Gateway
	clock   Clock
}

func NewNotificationService(db *gorm.DB, gateway push.Gateway, clock Clock) *NotificationService {
	return &NotificationService{db: db, gateway: gateway, clock: clock}
}

// CreateAndSend stores the notification, then multicasts it to every device
// token of its recipients. Tokens the gateway reports as permanently invalid
// are deleted. A transport-level failure surfaces as ErrExternalService; the
// stored notification stands either way.
func (s *NotificationService) CreateAndSend(n *models.Notification) error {
	if len(n.RecipientIDs) == 0 {
		return fmt.Errorf("%w: notification has no recipients", ErrValidation)
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	n.SentAt = s.clock.Now()
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	var tokens []models.PushToken
	err := s.db.Where("user_id = ANY(?::bigint[])", arrayLiteral(n.RecipientIDs)).
		Find(&tokens).Error
	if err != nil {
		return fmt.Errorf("resolve push tokens: %w", err)
	}
	if len(tokens) == 0 {
		logrus.WithField("notification_id", n.ID).Debug("No push tokens for recipients; stored only.")
		return nil
	}

	data := map[string]string{"type": n.Type, "notification_id": strconv.FormatUint(uint64(n.ID), 10)}
	if len(n.Data) > 0 {
		var extra map[string]string
		if err := json.Unmarshal(n.Data, &extra); err == nil {
			for k, v := range extra {
				data[k] = v
			}
		}
	}

	priority := "normal"
	if n.Priority == models.PriorityHigh || n.Priority == models.PriorityUrgent {
		priority = "high"
	}

	all := make([]string, 0, len(tokens))
	for _, t := range tokens {
		all = append(all, t.Token)
	}

	var dead []string
	var transportErr error
	for _, batch := range chunk(all, fcmBatchSize) {
		results, err := s.gateway.SendMulticast(push.Message{
			Tokens:   batch,
			Title:    n.Title,
			Body:     n.Message,
			Data:     data,
			Priority: priority,
		})
		if err != nil {
			metrics.PushSends.WithLabelValues("transport_error").Inc()
			transportErr = err
			continue
		}
		metrics.PushSends.WithLabelValues("ok").Inc()
		for i, r := range results {
			if i < len(batch) && !r.Success && push.IsDeadToken(r.ErrorCode) {
				dead = append(dead, batch[i])
			}
		}
	}

	if len(dead) > 0 {
		if err := s.db.Where("token IN ?", dead).Delete(&models.PushToken{}).Error; err != nil {
			logrus.WithError(err).Warn("Failed to delete invalid push tokens.")
		} else {
			metrics.PushTokensCleaned.Add(float64(len(dead)))
			logrus.WithField("count", len(dead)).Info("Deleted invalid push tokens.")
		}
	}

	if transportErr != nil {
		return fmt.Errorf("%w: push multicast: %v", ErrExternalService, transportErr)
	}
	return nil
}

// NotifyGuardiansOfRider sends the boarding or exit notice for one rider to
// their guardians. Satisfies the ledger's GuardianNotifier.
func (s *NotificationService) NotifyGuardiansOfRider(rider *models.Rider, kind string, at time.Time) error {
	if len(rider.GuardianIDs) == 0 {
		return nil
	}
	var title, body string
	switch kind {
	case models.NotificationRiderBoarded:
		title = "Montée à bord"
		body = fmt.Sprintf("%s est monté(e) à bord du bus à %s.", rider.FullName(), at.Format("15:04"))
	case models.NotificationRiderExited:
		title = "Descente du bus"
		body = fmt.Sprintf("%s est descendu(e) du bus à %s.", rider.FullName(), at.Format("15:04"))
	default:
		return fmt.Errorf("%w: unknown notification kind %q", ErrValidation, kind)
	}
	data, _ := json.Marshal(map[string]string{
		"rider_id":   strconv.FormatUint(uint64(rider.ID), 10),
		"vehicle_id": strconv.FormatUint(uint64(rider.VehicleID), 10),
	})
	return s.CreateAndSend(&models.Notification{
		Type:         kind,
		Title:        title,
		Message:      body,
		Priority:     models.PriorityHigh,
		RecipientIDs: rider.GuardianIDs,
		Data:         data,
	})
}

// NotifyGuardiansRouteStarted announces the start of the vehicle's current
// trip to the guardians of every rider enrolled in that trip. Guardians of
// riders not enrolled in the current trip segment are not notified; with no
// enrolled riders the whole call is a no-op.
func (s *NotificationService) NotifyGuardiansRouteStarted(vehicleID, driverID uint) error {
	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: vehicle %d", ErrNotFound, vehicleID)
		}
		return err
	}
	trip := vehicle.CurrentTripType
	if trip == "" {
		return fmt.Errorf("%w: vehicle %d has no current trip", ErrValidation, vehicleID)
	}

	var driver models.Driver
	if err := s.db.Preload("User").First(&driver, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: driver %d", ErrNotFound, driverID)
		}
		return err
	}
	driverName := driver.Name
	if driverName == "" {
		driverName = driver.User.Name
	}

	var riders []models.Rider
	err := s.db.Where("vehicle_id = ? AND is_active = ?", vehicleID, true).Find(&riders).Error
	if err != nil {
		return err
	}

	guardians := filterGuardiansByTrip(riders, trip)
	if len(guardians) == 0 {
		logrus.WithFields(logrus.Fields{
			"vehicle_id": vehicleID,
			"trip":       trip,
		}).Debug("No riders enrolled in current trip; skipping route-start notice.")
		return nil
	}

	title, body := tripTemplate(trip, driverName)
	data, _ := json.Marshal(map[string]string{
		"vehicle_id": strconv.FormatUint(uint64(vehicleID), 10),
		"trip":       trip,
	})
	return s.CreateAndSend(&models.Notification{
		Type:         models.NotificationRouteStarted,
		Title:        title,
		Message:      body,
		Priority:     models.PriorityHigh,
		RecipientIDs: guardians,
		Data:         data,
	})
}

// filterGuardiansByTrip returns the deduplicated guardian ids of riders
// enrolled in the given trip segment.
func filterGuardiansByTrip(riders []models.Rider, trip string) []int64 {
	seen := map[int64]struct{}{}
	var out []int64
	for _, r := range riders {
		enrolled := false
		for _, t := range r.ActiveTrips {
			if t == trip {
				enrolled = true
				break
			}
		}
		if !enrolled {
			continue
		}
		for _, g := range r.GuardianIDs {
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				out = append(out, g)
			}
		}
	}
	return out
}

// tripTemplate renders the route-start notice for a trip segment.
func tripTemplate(trip, driverName string) (title, body string) {
	switch trip {
	case models.TripMorningOutbound:
		return "Ramassage du matin démarré",
			fmt.Sprintf("Le ramassage du matin a démarré. %s est en route.", driverName)
	case models.TripMiddayOutbound:
		return "Ramassage de midi démarré",
			fmt.Sprintf("Le ramassage de midi a démarré. %s est en route.", driverName)
	case models.TripMiddayReturn:
		return "Retour de midi démarré",
			fmt.Sprintf("Le retour de midi a démarré. %s est en route.", driverName)
	case models.TripEveningReturn:
		return "Retour du soir démarré",
			fmt.Sprintf("Le retour du soir a démarré. %s est en route.", driverName)
	default:
		return "Trajet démarré",
			fmt.Sprintf("Le trajet a démarré. %s est en route.", driverName)
	}
}

// ListForUser returns the user's notifications newest first.
func (s *NotificationService) ListForUser(userID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []models.Notification
	err := s.db.Where("recipient_ids @> ?::bigint[]", arrayLiteral([]int64{int64(userID)})).
		Order("sent_at desc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_ids @> ?::bigint[] AND read = ?", arrayLiteral([]int64{int64(userID)}), false).
		Count(&n).Error
	return n, err
}

// MarkAsRead marks a notification read on behalf of one of its recipients.
func (s *NotificationService) MarkAsRead(id, userID uint) error {
	var n models.Notification
	if err := s.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification %d", ErrNotFound, id)
		}
		return err
	}
	recipient := false
	for _, r := range n.RecipientIDs {
		if r == int64(userID) {
			recipient = true
			break
		}
	}
	if !recipient {
		return fmt.Errorf("%w: not a recipient of notification %d", ErrForbidden, id)
	}
	if n.Read {
		return nil
	}
	now := s.clock.Now()
	return s.db.Model(&n).Updates(map[string]interface{}{"read": true, "read_at": now}).Error
}

// RegisterToken upserts a device token for the user. The token string is the
// primary key, so moving a token between accounts just rewrites the row.
func (s *NotificationService) RegisterToken(userID uint, token, platform string) error {
	if token == "" {
		return fmt.Errorf("%w: empty push token", ErrValidation)
	}
	now := s.clock.Now()
	row := models.PushToken{Token: token, UserID: userID, Platform: platform, CreatedAt: now, LastUsedAt: now}
	return s.db.Save(&row).Error
}

// RemoveToken deletes a device token, typically on logout.
func (s *NotificationService) RemoveToken(userID uint, token string) error {
	return s.db.Where("token = ? AND user_id = ?", token, userID).Delete(&models.PushToken{}).Error
}

// chunk splits xs into slices of at most n elements.
func chunk(xs []string, n int) [][]string {
	if n <= 0 {
		return [][]string{xs}
	}
	var out [][]string
	for len(xs) > n {
		out = append(out, xs[:n])
		xs = xs[n:]
	}
	if len(xs) > 0 {
		out = append(out, xs)
	}
	return out
}

// arrayLiteral renders ids as a Postgres bigint[] literal for raw operators
// like @> and ANY.
func arrayLiteral(ids []int64) string {
	s := "{"
	for i, id := range ids {
		if i > 0 {
			s += ","
		}
		s += strconv.FormatInt(id, 10)
	}
	return s + "}"
}
