package tests

import (
	"sync"
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// fakeRepo is an in-memory OrderRepository with the same optimistic
// version discipline as the Postgres one. It backs the concurrency and
// end-to-end scenario tests.
type fakeRepo struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	ledger   map[string]map[domain.Status]time.Time
	couriers map[string]domain.Courier
	qr       map[string][]byte
	now      func() time.Time
}

func newFakeRepo() *fakeRepo {
	// each mutation gets a strictly later timestamp, like a real clock
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeRepo{
		orders:   make(map[string]*domain.Order),
		ledger:   make(map[string]map[domain.Status]time.Time),
		couriers: make(map[string]domain.Courier),
		qr:       make(map[string][]byte),
		now: func() time.Time {
			base = base.Add(time.Second)
			return base
		},
	}
}

func (f *fakeRepo) CreateOrder(order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order.Version = 1
	now := f.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeRepo) GetOrder(orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeRepo) ListActive(restaurantID int) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var active []domain.Order
	for _, order := range f.orders {
		if order.RestaurantID == restaurantID && !order.Status.Terminal() {
			active = append(active, *order)
		}
	}
	return active, nil
}

func (f *fakeRepo) TransitionStatus(orderID string, to domain.Status, expectedVersion int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if order.Version != expectedVersion {
		return nil, domain.ErrConflict
	}
	order.Status = to
	order.Version++
	order.UpdatedAt = f.now()
	clone := *order
	return &clone, nil
}

func (f *fakeRepo) SetCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if order.Version != expectedVersion {
		return nil, domain.ErrConflict
	}
	order.CourierID = &courierID
	order.Version++
	order.UpdatedAt = f.now()
	clone := *order
	return &clone, nil
}

func (f *fakeRepo) RecordStatusAt(orderID string, status domain.Status, at time.Time) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, ok := f.ledger[orderID]
	if !ok {
		entries = make(map[domain.Status]time.Time)
		f.ledger[orderID] = entries
	}
	if existing, ok := entries[status]; ok {
		return existing, nil
	}
	entries[status] = at
	return at, nil
}

func (f *fakeRepo) GetHistory(orderID string) ([]domain.StatusEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var history []domain.StatusEntry
	for status, at := range f.ledger[orderID] {
		history = append(history, domain.StatusEntry{OrderID: orderID, Status: status, RecordedAt: at})
	}
	for i := 0; i < len(history); i++ {
		for j := i + 1; j < len(history); j++ {
			if history[j].RecordedAt.Before(history[i].RecordedAt) {
				history[i], history[j] = history[j], history[i]
			}
		}
	}
	return history, nil
}

func (f *fakeRepo) GetCourier(courierID string) (*domain.Courier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	courier, ok := f.couriers[courierID]
	if !ok {
		return nil, domain.ErrUnknownCourier
	}
	return &courier, nil
}

func (f *fakeRepo) SaveQRCode(orderID string, qr []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qr[orderID] = qr
	return nil
}

func (f *fakeRepo) GetQRCode(orderID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[orderID]; !ok {
		return nil, domain.ErrNotFound
	}
	return f.qr[orderID], nil
}
