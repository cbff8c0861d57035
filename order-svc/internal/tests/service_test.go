package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/mocks"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/service"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

func deliveryOrder(status domain.Status, version int64) *domain.Order {
	return &domain.Order{
		ID:           "11111111-2222-3333-4444-555555555555",
		RestaurantID: 7,
		Kind:         domain.FulfillmentDelivery,
		Status:       status,
		CustomerName: "Ana",
		Version:      version,
		UpdatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRequestTransition_Success(t *testing.T) {
	mockRepo := new(mocks.OrderRepository)
	mockPub := new(mocks.ChangePublisher)
	mockAudit := new(mocks.AuditLog)
	svc := service.NewOrderService(mockRepo, mockPub, mockAudit, nil)

	current := deliveryOrder(domain.StatusPending, 3)
	updated := deliveryOrder(domain.StatusPreparing, 4)
	updated.UpdatedAt = current.UpdatedAt.Add(5 * time.Second)

	mockRepo.On("GetOrder", current.ID).Return(current, nil).Once()
	mockRepo.On("TransitionStatus", current.ID, domain.StatusPreparing, int64(3)).Return(updated, nil).Once()
	mockRepo.On("RecordStatusAt", current.ID, domain.StatusPreparing, updated.UpdatedAt).Return(updated.UpdatedAt, nil).Once()
	mockPub.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.ChangeEvent) bool {
		return ev.OrderID == current.ID &&
			ev.RestaurantID == 7 &&
			ev.Status == domain.StatusPreparing &&
			ev.Version == 4 &&
			ev.UpdatedAt.Equal(updated.UpdatedAt)
	})).Return(nil).Once()
	mockAudit.On("Append", mock.MatchedBy(func(msg domain.AuditMessage) bool {
		return msg.OldStatus == domain.StatusPending &&
			msg.NewStatus == domain.StatusPreparing &&
			msg.ChangedBy == string(domain.RoleKitchen)
	})).Return(nil).Once()

	result, err := svc.RequestTransition(current.ID, domain.StatusPreparing, 3, domain.RoleKitchen)

	assert.NoError(t, err)
	assert.Equal(t, updated, result)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
	mockAudit.AssertExpectations(t)
}

func TestRequestTransition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		order   *domain.Order
		target  domain.Status
		wantErr error
	}{
		{
			name:    "illegal jump",
			order:   deliveryOrder(domain.StatusPending, 1),
			target:  domain.StatusCompleted,
			wantErr: domain.ErrIllegalTransition,
		},
		{
			name:    "unknown target status",
			order:   deliveryOrder(domain.StatusPending, 1),
			target:  domain.Status("shipped"),
			wantErr: domain.ErrIllegalTransition,
		},
		{
			name:    "already terminal",
			order:   deliveryOrder(domain.StatusCompleted, 9),
			target:  domain.StatusCancelled,
			wantErr: domain.ErrAlreadyTerminal,
		},
		{
			name: "delivering illegal for table order",
			order: &domain.Order{
				ID: "o-table", Kind: domain.FulfillmentTable,
				Status: domain.StatusReady, Version: 2,
			},
			target:  domain.StatusDelivering,
			wantErr: domain.ErrIllegalTransition,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockRepo := new(mocks.OrderRepository)
			svc := service.NewOrderService(mockRepo, nil, nil, nil)

			if testCase.target.Valid() {
				mockRepo.On("GetOrder", testCase.order.ID).Return(testCase.order, nil).Once()
			}

			result, err := svc.RequestTransition(testCase.order.ID, testCase.target, testCase.order.Version, domain.RoleAdmin)

			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Nil(t, result)
			// no commit, no ledger write, no publish on rejection
			mockRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
			mockRepo.AssertNotCalled(t, "RecordStatusAt", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRequestTransition_NotFound(t *testing.T) {
	mockRepo := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockRepo, nil, nil, nil)

	mockRepo.On("GetOrder", "missing").Return(nil, domain.ErrNotFound).Once()

	result, err := svc.RequestTransition("missing", domain.StatusPreparing, 1, domain.RoleKitchen)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, result)
}

func TestRequestTransition_ConflictPassthrough(t *testing.T) {
	mockRepo := new(mocks.OrderRepository)
	mockPub := new(mocks.ChangePublisher)
	svc := service.NewOrderService(mockRepo, mockPub, nil, nil)

	current := deliveryOrder(domain.StatusPreparing, 5)
	mockRepo.On("GetOrder", current.ID).Return(current, nil).Once()
	mockRepo.On("TransitionStatus", current.ID, domain.StatusReady, int64(4)).Return(nil, domain.ErrConflict).Once()

	result, err := svc.RequestTransition(current.ID, domain.StatusReady, 4, domain.RoleKitchen)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, result)
	mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		order   *domain.Order
		wantErr bool
	}{
		{
			name: "valid",
			order: &domain.Order{
				RestaurantID: 1, Kind: domain.FulfillmentPickup, CustomerName: "Bia",
				Lines: []domain.OrderLine{{ProductName: "Marmita P", Quantity: 2, UnitPrice: 18.5}},
			},
		},
		{
			name:    "no lines",
			order:   &domain.Order{RestaurantID: 1, Kind: domain.FulfillmentTable, CustomerName: "Bia"},
			wantErr: true,
		},
		{
			name: "bad fulfillment kind",
			order: &domain.Order{
				RestaurantID: 1, Kind: domain.Fulfillment("drone"), CustomerName: "Bia",
				Lines: []domain.OrderLine{{ProductName: "Pizza", Quantity: 1, UnitPrice: 40}},
			},
			wantErr: true,
		},
		{
			name: "no customer name",
			order: &domain.Order{
				RestaurantID: 1, Kind: domain.FulfillmentTable,
				Lines: []domain.OrderLine{{ProductName: "Pizza", Quantity: 1, UnitPrice: 40}},
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockRepo := new(mocks.OrderRepository)
			svc := service.NewOrderService(mockRepo, nil, nil, nil)

			if !testCase.wantErr {
				mockRepo.On("CreateOrder", mock.Anything).Return(nil).Once()
				mockRepo.On("RecordStatusAt", mock.Anything, domain.StatusPending, mock.Anything).
					Return(time.Now(), nil).Once()
			}

			created, err := svc.Create(testCase.order)

			if testCase.wantErr {
				assert.Error(t, err)
				mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.StatusPending, created.Status)
				assert.NotEmpty(t, created.ID)
				assert.Equal(t, 37.0, created.Subtotal)
			}
		})
	}
}

func TestAssignCourier(t *testing.T) {
	mockRepo := new(mocks.OrderRepository)
	mockPub := new(mocks.ChangePublisher)
	svc := service.NewOrderService(mockRepo, mockPub, nil, nil)

	courierID := "moto-12"
	current := deliveryOrder(domain.StatusReady, 6)
	updated := deliveryOrder(domain.StatusReady, 7)
	updated.CourierID = &courierID

	mockRepo.On("GetOrder", current.ID).Return(current, nil).Once()
	mockRepo.On("GetCourier", courierID).Return(&domain.Courier{ID: courierID, Name: "Carlos", Vehicle: "moto"}, nil).Once()
	mockRepo.On("SetCourier", current.ID, courierID, int64(6)).Return(updated, nil).Once()
	mockPub.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.ChangeEvent) bool {
		return ev.CourierID != nil && *ev.CourierID == courierID &&
			len(ev.ChangedFields) == 1 && ev.ChangedFields[0] == "courier_id"
	})).Return(nil).Once()

	result, err := svc.AssignCourier(current.ID, courierID, 6)

	assert.NoError(t, err)
	assert.Equal(t, &courierID, result.CourierID)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestAssignCourier_UnknownCourier(t *testing.T) {
	mockRepo := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockRepo, nil, nil, nil)

	current := deliveryOrder(domain.StatusReady, 6)
	mockRepo.On("GetOrder", current.ID).Return(current, nil).Once()
	mockRepo.On("GetCourier", "ghost").Return(nil, domain.ErrUnknownCourier).Once()

	result, err := svc.AssignCourier(current.ID, "ghost", 6)

	assert.ErrorIs(t, err, domain.ErrUnknownCourier)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "SetCourier", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignCourier_TableOrder(t *testing.T) {
	mockRepo := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockRepo, nil, nil, nil)

	tableOrder := &domain.Order{ID: "o-t", Kind: domain.FulfillmentTable, Status: domain.StatusReady, Version: 1}
	mockRepo.On("GetOrder", "o-t").Return(tableOrder, nil).Once()

	result, err := svc.AssignCourier("o-t", "moto-12", 1)

	assert.Error(t, err)
	assert.Nil(t, result)
}
