package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// ChannelFor is the per-restaurant event channel. Tenant isolation
// hangs on this: a subscriber only ever joins its own restaurant's
// channel.
func ChannelFor(restaurantID int) string {
	return fmt.Sprintf("orders:events:%d", restaurantID)
}

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, ChannelFor(event.RestaurantID), payload).Err()
}

// Feed is one observer's live connection to a restaurant's change
// stream. It is constructed explicitly and closed explicitly; there is
// no shared process-wide connection. When the underlying subscription
// dies the Events channel is closed and the observer is expected to
// reconnect and resync.
type Feed struct {
	sub    *redis.PubSub
	events chan domain.ChangeEvent
}

func Connect(ctx context.Context, rdb *redis.Client, restaurantID int) (*Feed, error) {
	sub := rdb.Subscribe(ctx, ChannelFor(restaurantID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelFor(restaurantID), err)
	}

	feed := &Feed{
		sub:    sub,
		events: make(chan domain.ChangeEvent, 64),
	}
	go feed.pump()
	return feed, nil
}

func (f *Feed) pump() {
	defer close(f.events)
	for msg := range f.sub.Channel() {
		var event domain.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Dropping malformed change event: %v", err)
			continue
		}
		f.events <- event
	}
}

// Events yields change events until the feed disconnects, then closes.
func (f *Feed) Events() <-chan domain.ChangeEvent {
	return f.events
}

func (f *Feed) Close() error {
	return f.sub.Close()
}
