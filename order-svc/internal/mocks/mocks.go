package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) CreateOrder(order *domain.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *OrderRepository) GetOrder(orderID string) (*domain.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) ListActive(restaurantID int) ([]domain.Order, error) {
	args := m.Called(restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *OrderRepository) TransitionStatus(orderID string, to domain.Status, expectedVersion int64) (*domain.Order, error) {
	args := m.Called(orderID, to, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) SetCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error) {
	args := m.Called(orderID, courierID, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) RecordStatusAt(orderID string, status domain.Status, at time.Time) (time.Time, error) {
	args := m.Called(orderID, status, at)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *OrderRepository) GetHistory(orderID string) ([]domain.StatusEntry, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusEntry), args.Error(1)
}

func (m *OrderRepository) GetCourier(courierID string) (*domain.Courier, error) {
	args := m.Called(courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Courier), args.Error(1)
}

func (m *OrderRepository) SaveQRCode(orderID string, qr []byte) error {
	args := m.Called(orderID, qr)
	return args.Error(0)
}

func (m *OrderRepository) GetQRCode(orderID string) ([]byte, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type ChangePublisher struct {
	mock.Mock
}

func (m *ChangePublisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type AuditLog struct {
	mock.Mock
}

func (m *AuditLog) Append(msg domain.AuditMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func (m *QRGenerator) Generate(orderID string) ([]byte, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) Create(order *domain.Order) (*domain.Order, error) {
	args := m.Called(order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderService) RequestTransition(orderID string, target domain.Status, expectedVersion int64, actor domain.Role) (*domain.Order, error) {
	args := m.Called(orderID, target, expectedVersion, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderService) AssignCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error) {
	args := m.Called(orderID, courierID, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderService) Snapshot(orderID string) (*domain.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderService) History(orderID string) ([]domain.StatusEntry, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusEntry), args.Error(1)
}

func (m *OrderService) ListActive(restaurantID int) ([]domain.Order, error) {
	args := m.Called(restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *OrderService) QRCode(orderID string) ([]byte, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
