package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// PositionUpdate is the event published on every accepted GPS sample and
// streamed to websocket dashboard clients.
type PositionUpdate struct {
	VehicleID      uint    `json:"vehicle_id"`
	DriverID       uint    `json:"driver_id"`
	RouteID        uint    `json:"route_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	SpeedKmh       float64 `json:"speed_kmh"`
	HeadingDeg     float64 `json:"heading_deg"`
	Status         string  `json:"status"`
	PassengerCount int     `json:"passenger_count"`
	TimestampMs    int64   `json:"timestamp_ms"`
}

// Broker fans position updates out to subscribers, keyed by vehicle id.
// Subscribing to vehicle 0 receives every vehicle's updates.
type Broker interface {
	Subscribe(vehicleID uint) chan PositionUpdate
	Unsubscribe(vehicleID uint, ch chan PositionUpdate)
	Publish(evt PositionUpdate)
}

const allVehicles uint = 0

// Hub is the in-memory Broker. Slow subscribers drop updates rather than
// block the ingest path.
type Hub struct {
	mu   sync.Mutex
	subs map[uint]map[chan PositionUpdate]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[uint]map[chan PositionUpdate]struct{}{}}
}

func (h *Hub) Subscribe(vehicleID uint) chan PositionUpdate {
	ch := make(chan PositionUpdate, 16)
	h.mu.Lock()
	if h.subs[vehicleID] == nil {
		h.subs[vehicleID] = map[chan PositionUpdate]struct{}{}
	}
	h.subs[vehicleID][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(vehicleID uint, ch chan PositionUpdate) {
	h.mu.Lock()
	if m := h.subs[vehicleID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(h.subs, vehicleID)
		}
	}
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Publish(evt PositionUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range []uint{evt.VehicleID, allVehicles} {
		for ch := range h.subs[key] {
			select {
			case ch <- evt:
			default:
				logrus.WithField("vehicle_id", evt.VehicleID).
					Warn("Position subscriber full, dropping update.")
			}
		}
	}
}
