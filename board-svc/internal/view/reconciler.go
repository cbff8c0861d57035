package view

import (
	"sort"
	"sync"
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// Board is one observer's reconciled view of its restaurant's orders.
// It merges three inputs without ever regressing visible state:
// full snapshots (Reset), authoritative change events (ApplyEvent) and
// locally-optimistic mutations (ApplyOptimistic). Authoritative data
// wins by server updated_at, not by arrival order.
type Board struct {
	mu      sync.Mutex
	filter  domain.Filter
	orders  map[string]domain.Order
	entered map[string]time.Time
	// pending holds the last known-good order per in-flight optimistic
	// mutation; its presence is the "awaiting confirmation" tag.
	pending map[string]domain.Order
}

func NewBoard(filter domain.Filter) *Board {
	return &Board{
		filter:  filter,
		orders:  make(map[string]domain.Order),
		entered: make(map[string]time.Time),
		pending: make(map[string]domain.Order),
	}
}

// Reset replaces the whole view with a fresh snapshot. This is the
// mandatory full resync after connect/reconnect; any optimistic state
// is discarded because the snapshot is newer than whatever was pending.
func (b *Board) Reset(snapshot []domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders = make(map[string]domain.Order)
	b.entered = make(map[string]time.Time)
	b.pending = make(map[string]domain.Order)
	for _, order := range snapshot {
		if b.filter.Match(order) {
			b.orders[order.ID] = order
			b.entered[order.ID] = order.UpdatedAt
		}
	}
}

// SetEnteredAt refines an order's status-entry time from its ledger
// history (a snapshot only carries updated_at).
func (b *Board) SetEnteredAt(orderID string, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.orders[orderID]; ok {
		b.entered[orderID] = at
	}
}

// ApplyEvent merges an authoritative change event. The return value
// reports that the board cannot reconcile locally (the event describes
// an order it has never seen in full) and needs a resync.
func (b *Board) ApplyEvent(event domain.ChangeEvent) (needResync bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	base, known := b.orders[event.OrderID]
	if !known {
		// an optimistic move may have hidden the order already
		base, known = b.pending[event.OrderID]
	}

	if known {
		if event.UpdatedAt.Before(base.UpdatedAt) {
			// stale duplicate or out-of-order delivery
			return false
		}
		delete(b.pending, event.OrderID)

		statusChanged := base.Status != event.Status
		base.Status = event.Status
		base.UpdatedAt = event.UpdatedAt
		base.Version = event.Version
		if event.CourierID != nil {
			base.CourierID = event.CourierID
		}
		b.place(base, statusChanged, event.UpdatedAt)
		return false
	}

	// unknown order: only resync when it would actually be visible
	probe := domain.Order{
		ID:           event.OrderID,
		RestaurantID: event.RestaurantID,
		Status:       event.Status,
	}
	return b.filter.Match(probe)
}

// ApplyAuthoritative merges a full order snapshot (e.g. the response of
// a committed transition or a single-order refetch) under the same
// last-write-wins rule as events.
func (b *Board) ApplyAuthoritative(order domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	base, known := b.orders[order.ID]
	if !known {
		base, known = b.pending[order.ID]
	}
	if known && order.UpdatedAt.Before(base.UpdatedAt) {
		return
	}
	delete(b.pending, order.ID)

	statusChanged := !known || base.Status != order.Status
	b.place(order, statusChanged, order.UpdatedAt)
}

// place inserts or removes per the role filter. Must hold b.mu.
func (b *Board) place(order domain.Order, statusChanged bool, at time.Time) {
	if !b.filter.Match(order) {
		delete(b.orders, order.ID)
		delete(b.entered, order.ID)
		return
	}
	b.orders[order.ID] = order
	if statusChanged || b.entered[order.ID].IsZero() {
		b.entered[order.ID] = at
	}
}

// ApplyOptimistic applies a local mutation immediately for
// responsiveness, remembering the prior state so a server rejection can
// roll it back. The server timestamp is left untouched: the value is
// provisional until an authoritative event or snapshot lands.
func (b *Board) ApplyOptimistic(orderID string, mutate func(*domain.Order)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.orders[orderID]
	if !ok {
		return false
	}
	if _, tagged := b.pending[orderID]; !tagged {
		b.pending[orderID] = current
	}

	updated := current
	mutate(&updated)
	if b.filter.Match(updated) {
		b.orders[orderID] = updated
	} else {
		// removal rule: the order leaves the board the instant it no
		// longer matches, own action or not
		delete(b.orders, orderID)
		delete(b.entered, orderID)
	}
	return true
}

// Rollback restores the last known-good state after the server rejected
// the optimistic mutation.
func (b *Board) Rollback(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prior, ok := b.pending[orderID]
	if !ok {
		return
	}
	delete(b.pending, orderID)
	if b.filter.Match(prior) {
		b.orders[orderID] = prior
		if b.entered[orderID].IsZero() {
			b.entered[orderID] = prior.UpdatedAt
		}
	} else {
		delete(b.orders, orderID)
		delete(b.entered, orderID)
	}
}

// Pending reports whether an optimistic mutation is still awaiting its
// authoritative confirmation.
func (b *Board) Pending(orderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[orderID]
	return ok
}

func (b *Board) Get(orderID string) (domain.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.orders[orderID]
	return order, ok
}

// Visible returns the current board contents, oldest order first.
func (b *Board) Visible() []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders := make([]domain.Order, 0, len(b.orders))
	for _, order := range b.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders
}

// Urgencies recomputes every visible order's tier for the given clock
// reading. Called on a local tick, completely decoupled from event
// arrival.
func (b *Board) Urgencies(now time.Time) map[string]Tier {
	b.mu.Lock()
	defer b.mu.Unlock()

	tiers := make(map[string]Tier, len(b.orders))
	for id, order := range b.orders {
		enteredAt := b.entered[id]
		if enteredAt.IsZero() {
			enteredAt = order.UpdatedAt
		}
		tiers[id] = Classify(now, enteredAt)
	}
	return tiers
}
