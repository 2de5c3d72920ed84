package services

import (
	"github.com/shopspring/decimal"

	"producthub/internal/domain"
)

func testProduct(id uint64, name string, price string, stock int64) *domain.Product {
	return &domain.Product{
		ID:                  id,
		Name:                name,
		Price:               decimal.RequireFromString(price),
		Stock:               stock,
		MaxQuantityPerOrder: 10,
		IsActive:            true,
	}
}

func testCart(cartID, customerID uint64, items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{
		ID:         cartID,
		CustomerID: customerID,
		Items:      items,
	}
}

func testCartItem(id, cartID, productID uint64, quantity int64) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
}

const (
	testCustomerID = uint64(7)
	testCartID     = uint64(3)
)
