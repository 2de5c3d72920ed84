package services

import (
	"context"
	"fmt"

	"producthub/internal/cache"
	"producthub/internal/domain"
	"producthub/internal/repository"
)

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    *cache.ProductCache
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, productCache *cache.ProductCache) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    productCache,
	}
}

func (s *CartService) getProduct(ctx context.Context, productID uint64) (*domain.Product, error) {
	return s.cache.GetOrLoad(ctx, productID, s.products.FindByID)
}

// GetCart returns the customer's cart, creating an empty one on first
// access.
func (s *CartService) GetCart(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	return s.carts.FindOrCreateByCustomer(ctx, customerID)
}

// AddItem adds quantity units of a product to the cart. Adding a product
// already in the cart increments the existing line instead of duplicating
// it.
func (s *CartService) AddItem(ctx context.Context, customerID, productID uint64, quantity int64) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, productID)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, product.Name)
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
	}
	if quantity > product.MaxQuantityPerOrder {
		return nil, fmt.Errorf("%w: %s (limit %d)", domain.ErrQuantityCapExceeded, product.Name, product.MaxQuantityPerOrder)
	}

	cart, err := s.carts.FindOrCreateByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}

	return s.carts.FindByCustomer(ctx, customerID)
}

// UpdateItemQuantity sets a cart item's quantity. A quantity of zero or
// less removes the item.
func (s *CartService) UpdateItemQuantity(ctx context.Context, customerID, itemID uint64, quantity int64) (*domain.Cart, error) {
	item, err := s.carts.FindItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrCartItemNotFound
	}

	if quantity <= 0 {
		err = s.carts.DeleteItem(ctx, item.ID)
	} else {
		err = s.carts.UpdateItemQuantity(ctx, item.ID, quantity)
	}
	if err != nil {
		return nil, err
	}

	return s.carts.FindByCustomer(ctx, customerID)
}

func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uint64) (*domain.Cart, error) {
	item, err := s.carts.FindItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrCartItemNotFound
	}

	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}

	return s.carts.FindByCustomer(ctx, customerID)
}

// Clear removes every item from the customer's cart. The cart row itself
// survives.
func (s *CartService) Clear(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	cart, err := s.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}

	if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
		return nil, err
	}

	return s.carts.FindByCustomer(ctx, customerID)
}
