package view

import (
	"context"
	"log"
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// Stream is one live connection to the change feed. A closed Events
// channel is the delivery-gap signal: the transport never replays what
// was missed, so there is no per-event error to inspect. The consumer's
// only correct response is to reconnect and take a full resync.
type Stream interface {
	Events() <-chan domain.ChangeEvent
	Close() error
}

// Source dials a new Stream; called again after every disconnect.
type Source interface {
	Connect(ctx context.Context) (Stream, error)
}

// Resyncer fetches the authoritative state used to close delivery gaps.
type Resyncer interface {
	FetchSnapshot(ctx context.Context) ([]domain.Order, error)
	FetchHistory(ctx context.Context, orderID string) ([]domain.StatusEntry, error)
}

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Subscriber keeps one Board fed: connect, resync unconditionally,
// consume events, and on any gap or disconnect start over with a new
// connection and another full resync. Events are never replayed by the
// transport, so the resync is what makes reconnects safe.
type Subscriber struct {
	board  *Board
	source Source
	resync Resyncer
}

func NewSubscriber(board *Board, source Source, resync Resyncer) *Subscriber {
	return &Subscriber{board: board, source: source, resync: resync}
}

func (s *Subscriber) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		stream, err := s.source.Connect(ctx)
		if err != nil {
			log.Printf("Feed connect failed, retrying in %s: %v", backoff, err)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}

		if err := s.fullResync(ctx); err != nil {
			stream.Close()
			log.Printf("Resync failed, retrying in %s: %v", backoff, err)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = initialBackoff

		s.consume(ctx, stream)
		stream.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// stream ended: treat as a delivery gap and reconnect
	}
}

func (s *Subscriber) consume(ctx context.Context, stream Stream) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-stream.Events():
			if !ok {
				return
			}
			if s.board.ApplyEvent(event) {
				// event about an order we have never seen in full
				if err := s.fullResync(ctx); err != nil {
					log.Printf("Resync after unknown order failed: %v", err)
					return
				}
			}
		}
	}
}

// fullResync replaces the board with authoritative state and refines
// each order's status-entry time from its ledger.
func (s *Subscriber) fullResync(ctx context.Context) error {
	snapshot, err := s.resync.FetchSnapshot(ctx)
	if err != nil {
		return err
	}
	s.board.Reset(snapshot)

	for _, order := range snapshot {
		history, err := s.resync.FetchHistory(ctx, order.ID)
		if err != nil {
			// updated_at fallback already in place; not worth failing over
			continue
		}
		s.board.SetEnteredAt(order.ID, EnteredAt(order, history))
	}
	return nil
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
