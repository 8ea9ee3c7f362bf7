package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisBroker implements Broker over Redis Pub/Sub so multiple API
// instances share one live feed.
type RedisBroker struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[chan PositionUpdate]*redis.PubSub
}

func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBroker{
		rdb:  redis.NewClient(opt),
		subs: map[chan PositionUpdate]*redis.PubSub{},
	}, nil
}

func (b *RedisBroker) Subscribe(vehicleID uint) chan PositionUpdate {
	ch := make(chan PositionUpdate, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(vehicleID))
	// initial consume to ensure the subscription is live
	_, _ = ps.Receive(ctx)

	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()

	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt PositionUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

// Unsubscribe closes the underlying pubsub; the reader goroutine drains and
// closes the subscriber channel.
func (b *RedisBroker) Unsubscribe(vehicleID uint, ch chan PositionUpdate) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		if err := ps.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis subscription.")
		}
	}
}

func (b *RedisBroker) Publish(evt PositionUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	for _, key := range []uint{evt.VehicleID, allVehicles} {
		if err := b.rdb.Publish(ctx, b.chanName(key), data).Err(); err != nil {
			logrus.WithError(err).Warn("Failed to publish position update to redis.")
		}
	}
}

func (b *RedisBroker) chanName(vehicleID uint) string {
	return fmt.Sprintf("vehicle:%d", vehicleID)
}
