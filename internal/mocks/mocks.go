package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"producthub/internal/domain"
	"producthub/internal/infra"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateFromCart(ctx context.Context, order *domain.Order, cartID uint64) error {
	args := m.Called(ctx, order, cartID)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uint64, offset, limit int) ([]domain.Order, int64, error) {
	args := m.Called(ctx, customerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindItems(ctx context.Context, orderID uint64) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) FindStatusHistory(ctx context.Context, orderID uint64) ([]domain.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderStatusHistory), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, newStatus domain.OrderStatus, notes string) error {
	args := m.Called(ctx, order, newStatus, notes)
	if args.Error(0) == nil {
		order.Status = newStatus
	}
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentReference(ctx context.Context, orderID uint64, reference string) error {
	args := m.Called(ctx, orderID, reference)
	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindOrCreateByCustomer(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByCustomer(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartRepository) FindItem(ctx context.Context, customerID, itemID uint64) (*domain.CartItem, error) {
	args := m.Called(ctx, customerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpsertItem(ctx context.Context, cartID, productID uint64, quantity int64) error {
	args := m.Called(ctx, cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateItemQuantity(ctx context.Context, itemID uint64, quantity int64) error {
	args := m.Called(ctx, itemID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteItem(ctx context.Context, itemID uint64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockCartRepository) ClearItems(ctx context.Context, cartID uint64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockProductRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockProductRepository) ListReviews(ctx context.Context, productID uint64) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) InitiateTransaction(ctx context.Context, order *domain.Order) (*infra.PaymentInitiation, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.PaymentInitiation), args.Error(1)
}
