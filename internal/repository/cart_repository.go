package repository

import (
	"context"

	"producthub/internal/domain"
)

type CartRepository interface {
	// FindOrCreateByCustomer returns the customer's cart, creating an empty
	// one on first access. Items are loaded with their products.
	FindOrCreateByCustomer(ctx context.Context, customerID uint64) (*domain.Cart, error)

	// FindByCustomer returns nil without error when the customer has no cart.
	FindByCustomer(ctx context.Context, customerID uint64) (*domain.Cart, error)

	FindItem(ctx context.Context, customerID, itemID uint64) (*domain.CartItem, error)

	// UpsertItem adds a cart item or, when the (cart, product) pair already
	// exists, increments its quantity.
	UpsertItem(ctx context.Context, cartID, productID uint64, quantity int64) error

	UpdateItemQuantity(ctx context.Context, itemID uint64, quantity int64) error
	DeleteItem(ctx context.Context, itemID uint64) error
	ClearItems(ctx context.Context, cartID uint64) error
}
