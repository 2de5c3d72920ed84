package repository

import (
	"context"

	"producthub/internal/domain"
)

type OrderRepository interface {
	// CreateFromCart runs the whole checkout write set as one transaction:
	// conditional stock decrements, order + item rows, the initial history
	// row and clearing of the cart's items. Returns
	// domain.ErrInsufficientStock if any decrement would overdraw; nothing
	// is persisted in that case.
	CreateFromCart(ctx context.Context, order *domain.Order, cartID uint64) error

	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID uint64, offset, limit int) ([]domain.Order, int64, error)
	FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
	FindItems(ctx context.Context, orderID uint64) ([]domain.OrderItem, error)
	FindStatusHistory(ctx context.Context, orderID uint64) ([]domain.OrderStatusHistory, error)

	// UpdateStatus atomically moves the order from its current status to
	// newStatus and appends one history row. The update is conditional on
	// the row still holding order.Status; domain.ErrInvalidTransition is
	// returned when a concurrent writer got there first.
	UpdateStatus(ctx context.Context, order *domain.Order, newStatus domain.OrderStatus, notes string) error

	SetPaymentReference(ctx context.Context, orderID uint64, reference string) error
}
