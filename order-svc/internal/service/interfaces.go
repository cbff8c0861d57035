package service

import (
	"context"
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

type OrderRepository interface {
	CreateOrder(order *domain.Order) error
	GetOrder(orderID string) (*domain.Order, error)
	ListActive(restaurantID int) ([]domain.Order, error)
	TransitionStatus(orderID string, to domain.Status, expectedVersion int64) (*domain.Order, error)
	SetCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error)
	RecordStatusAt(orderID string, status domain.Status, at time.Time) (time.Time, error)
	GetHistory(orderID string) ([]domain.StatusEntry, error)
	GetCourier(courierID string) (*domain.Courier, error)
	SaveQRCode(orderID string, qr []byte) error
	GetQRCode(orderID string) ([]byte, error)
}

type ChangePublisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
}

type AuditLog interface {
	Append(msg domain.AuditMessage) error
}

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

type OrderServiceInterface interface {
	Create(order *domain.Order) (*domain.Order, error)
	RequestTransition(orderID string, target domain.Status, expectedVersion int64, actor domain.Role) (*domain.Order, error)
	AssignCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error)
	Snapshot(orderID string) (*domain.Order, error)
	History(orderID string) ([]domain.StatusEntry, error)
	ListActive(restaurantID int) ([]domain.Order, error)
	QRCode(orderID string) ([]byte, error)
}
