package services

import (
	"schoolbus_tracker/internal/models"
)

// DeriveLiveStatus maps a speed sample (km/h) to a live status.
// "arrived" is never produced here: it is set by an external arrival signal
// and only the reconciler's timeout sweep clears it.
func DeriveLiveStatus(speedKmh float64) string {
	switch {
	case speedKmh == 0:
		return models.LiveStatusStopped
	case speedKmh <= 5:
		return models.LiveStatusIdle
	default:
		return models.LiveStatusEnRoute
	}
}

// NextLiveStatus applies a new speed sample to the stored status. A vehicle
// in "arrived" keeps it regardless of renewed low-speed motion; only time
// downgrades it, which stops the status flapping while it idles at a stop.
func NextLiveStatus(current string, speedKmh float64) string {
	if current == models.LiveStatusArrived {
		return models.LiveStatusArrived
	}
	return DeriveLiveStatus(speedKmh)
}
