package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

type OrderService struct {
	repo      OrderRepository
	publisher ChangePublisher
	audit     AuditLog
	qrEncoder QRGenerator
}

func NewOrderService(repo OrderRepository, publisher ChangePublisher, audit AuditLog, qr QRGenerator) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		audit:     audit,
		qrEncoder: qr,
	}
}

// Create stores a new order in PENDING, stamps the first ledger entry
// and announces it to the restaurant's observers.
func (s *OrderService) Create(order *domain.Order) (*domain.Order, error) {
	if order.RestaurantID <= 0 || len(order.Lines) == 0 || order.CustomerName == "" {
		return nil, errors.New("invalid order payload")
	}
	if !order.Kind.Valid() {
		return nil, errors.New("invalid fulfillment kind")
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Status = domain.StatusPending
	if order.Subtotal == 0 {
		for _, line := range order.Lines {
			order.Subtotal += float64(line.Quantity) * line.UnitPrice
		}
	}
	order.Total = order.Subtotal + order.DeliveryFee

	if err := s.repo.CreateOrder(order); err != nil {
		return nil, err
	}

	if _, err := s.repo.RecordStatusAt(order.ID, domain.StatusPending, order.CreatedAt); err != nil {
		log.Printf("Warning: failed to record pending ledger entry for %s: %v", order.ID, err)
	}

	if s.qrEncoder != nil {
		if qr, err := s.qrEncoder.Generate(order.ID); err == nil {
			_ = s.repo.SaveQRCode(order.ID, qr)
		}
	}

	s.publish(order, []string{"created", "status"})
	return order, nil
}

// RequestTransition moves one order along its legal successor graph.
// The expected version serializes racing actors: the loser gets
// ErrConflict and must refetch, never a silent overwrite.
func (s *OrderService) RequestTransition(orderID string, target domain.Status, expectedVersion int64, actor domain.Role) (*domain.Order, error) {
	if !target.Valid() {
		return nil, domain.ErrIllegalTransition
	}

	order, err := s.repo.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domain.ErrAlreadyTerminal
	}
	if !domain.CanTransition(order.Kind, order.Status, target) {
		return nil, domain.ErrIllegalTransition
	}

	updated, err := s.repo.TransitionStatus(orderID, target, expectedVersion)
	if err != nil {
		return nil, err
	}

	// first entry wins; duplicate or replayed stamps never rewrite it
	if _, err := s.repo.RecordStatusAt(orderID, target, updated.UpdatedAt); err != nil {
		log.Printf("Warning: failed to record ledger entry for %s/%s: %v", orderID, target, err)
	}

	s.publish(updated, []string{"status"})
	s.appendAudit(order.Status, updated, actor)
	return updated, nil
}

// AssignCourier attaches a courier to a delivery order under the same
// version guard as a status transition.
func (s *OrderService) AssignCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error) {
	order, err := s.repo.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domain.ErrAlreadyTerminal
	}
	if order.Kind != domain.FulfillmentDelivery && order.Kind != domain.FulfillmentPickup {
		return nil, errors.New("order kind does not take a courier")
	}

	if _, err := s.repo.GetCourier(courierID); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetCourier(orderID, courierID, expectedVersion)
	if err != nil {
		return nil, err
	}

	s.publish(updated, []string{"courier_id"})
	return updated, nil
}

// Snapshot is the full-state resync primitive for observers.
func (s *OrderService) Snapshot(orderID string) (*domain.Order, error) {
	return s.repo.GetOrder(orderID)
}

func (s *OrderService) History(orderID string) ([]domain.StatusEntry, error) {
	return s.repo.GetHistory(orderID)
}

func (s *OrderService) ListActive(restaurantID int) ([]domain.Order, error) {
	return s.repo.ListActive(restaurantID)
}

func (s *OrderService) QRCode(orderID string) ([]byte, error) {
	qr, err := s.repo.GetQRCode(orderID)
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 && s.qrEncoder != nil {
		if regenerated, err := s.qrEncoder.Generate(orderID); err == nil {
			_ = s.repo.SaveQRCode(orderID, regenerated)
			return regenerated, nil
		}
	}
	return qr, nil
}

// publish is fire-and-forget from the mutator's point of view: a
// committed transition never fails or blocks on the event path.
// Observers that miss an event recover through resync.
func (s *OrderService) publish(order *domain.Order, changed []string) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	event := domain.ChangeEvent{
		OrderID:       order.ID,
		RestaurantID:  order.RestaurantID,
		Status:        order.Status,
		UpdatedAt:     order.UpdatedAt,
		Version:       order.Version,
		CourierID:     order.CourierID,
		ChangedFields: changed,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Warning: failed to publish change event for %s: %v", order.ID, err)
	}
}

func (s *OrderService) appendAudit(from domain.Status, order *domain.Order, actor domain.Role) {
	if s.audit == nil {
		return
	}
	msg := domain.AuditMessage{
		Type:         "status_changed",
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		OldStatus:    from,
		NewStatus:    order.Status,
		ChangedBy:    string(actor),
		Timestamp:    order.UpdatedAt,
	}
	if err := s.audit.Append(msg); err != nil {
		log.Printf("Warning: failed to append audit record for %s: %v", order.ID, err)
	}
}

var _ OrderServiceInterface = (*OrderService)(nil)
