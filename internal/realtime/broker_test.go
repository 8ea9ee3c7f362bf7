package realtime

import (
	"testing"
	"time"
)

func recvUpdate(t *testing.T, ch chan PositionUpdate) PositionUpdate {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for position update")
		return PositionUpdate{}
	}
}

func TestHubDeliversToVehicleSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(7)
	defer h.Unsubscribe(7, ch)

	h.Publish(PositionUpdate{VehicleID: 7, SpeedKmh: 20})
	evt := recvUpdate(t, ch)
	if evt.VehicleID != 7 || evt.SpeedKmh != 20 {
		t.Errorf("got %+v", evt)
	}
}

func TestHubDoesNotCrossVehicles(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(7)
	defer h.Unsubscribe(7, ch)

	h.Publish(PositionUpdate{VehicleID: 8})
	select {
	case evt := <-ch:
		t.Errorf("subscriber for vehicle 7 received %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubAllVehiclesSubscription(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(0)
	defer h.Unsubscribe(0, ch)

	h.Publish(PositionUpdate{VehicleID: 7})
	h.Publish(PositionUpdate{VehicleID: 8})

	first := recvUpdate(t, ch)
	second := recvUpdate(t, ch)
	if first.VehicleID != 7 || second.VehicleID != 8 {
		t.Errorf("got vehicles %d,%d, want 7,8", first.VehicleID, second.VehicleID)
	}
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(7)
	defer h.Unsubscribe(7, ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.Publish(PositionUpdate{VehicleID: 7, TimestampMs: int64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(7)
	h.Unsubscribe(7, ch)
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
}
