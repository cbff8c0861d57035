package fanout

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// subscription channel depth; a consumer that falls this far behind is
// treated as dead and torn down rather than queued for.
const subscriptionBuffer = 32

type SnapshotSource interface {
	GetOrder(orderID string) (*domain.Order, error)
	ListActive(restaurantID int) ([]domain.Order, error)
}

type Subscription struct {
	ID           string
	RestaurantID int
	Filter       domain.Filter

	events chan domain.ChangeEvent
}

// Events is closed when the subscription is unsubscribed or dropped;
// a closed channel means the observer must reconnect and resync.
func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Manager keeps the live subscriber set per restaurant and fans each
// ingested change event out to them. Delivery never blocks the caller:
// a full subscriber buffer kills that one subscription, nothing else.
type Manager struct {
	mu        sync.Mutex
	tenants   map[int]map[string]*Subscription
	snapshots SnapshotSource
	metrics   *Metrics
}

func NewManager(snapshots SnapshotSource, metrics *Metrics) *Manager {
	return &Manager{
		tenants:   make(map[int]map[string]*Subscription),
		snapshots: snapshots,
		metrics:   metrics,
	}
}

// Subscribe registers an observer and returns its handle together with
// the initial snapshot set for its role filter. The subscription is
// registered before the snapshot is taken: an event committed while the
// snapshot query runs waits in the buffer and replays after it, so the
// worst case is a duplicate the reconcilers already treat as a no-op,
// never a lost event.
func (m *Manager) Subscribe(restaurantID int, filter domain.Filter) (*Subscription, []domain.Order, error) {
	sub := &Subscription{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Filter:       filter,
		events:       make(chan domain.ChangeEvent, subscriptionBuffer),
	}

	m.mu.Lock()
	subs, ok := m.tenants[restaurantID]
	if !ok {
		subs = make(map[string]*Subscription)
		m.tenants[restaurantID] = subs
	}
	subs[sub.ID] = sub
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ActiveSubs.Inc()
	}

	snapshot, err := m.initialSnapshot(restaurantID, filter)
	if err != nil {
		m.mu.Lock()
		m.remove(sub)
		m.mu.Unlock()
		return nil, nil, err
	}

	if m.metrics != nil {
		m.metrics.SnapshotsSent.Inc()
	}
	return sub, snapshot, nil
}

func (m *Manager) initialSnapshot(restaurantID int, filter domain.Filter) ([]domain.Order, error) {
	if filter.Role == domain.RoleTracker {
		order, err := m.snapshots.GetOrder(filter.OrderID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		if order.RestaurantID != restaurantID {
			return nil, domain.ErrNotFound
		}
		return []domain.Order{*order}, nil
	}

	active, err := m.snapshots.ListActive(restaurantID)
	if err != nil {
		return nil, err
	}
	var snapshot []domain.Order
	for _, order := range active {
		if filter.Match(order) {
			snapshot = append(snapshot, order)
		}
	}
	return snapshot, nil
}

func (m *Manager) Unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(sub)
}

// remove must be called with m.mu held.
func (m *Manager) remove(sub *Subscription) {
	subs, ok := m.tenants[sub.RestaurantID]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(m.tenants, sub.RestaurantID)
	}
	close(sub.events)
	if m.metrics != nil {
		m.metrics.ActiveSubs.Dec()
	}
}

// Ingest fans one committed change event out to the event's restaurant
// only. Board roles get every tenant event (they need the event that
// moves an order out of their filter to drop it); tracker subscriptions
// get only their own order's events.
func (m *Manager) Ingest(event domain.ChangeEvent) {
	if m.metrics != nil {
		m.metrics.Ingested.Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.tenants[event.RestaurantID] {
		if sub.Filter.Role == domain.RoleTracker && sub.Filter.OrderID != event.OrderID {
			continue
		}
		select {
		case sub.events <- event:
			if m.metrics != nil {
				m.metrics.Delivered.Inc()
			}
		default:
			m.remove(sub)
			if m.metrics != nil {
				m.metrics.DroppedSubs.Inc()
			}
		}
	}
}

// ActiveCount reports live subscriptions for one restaurant.
func (m *Manager) ActiveCount(restaurantID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tenants[restaurantID])
}
