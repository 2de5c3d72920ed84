package services

import (
	"github.com/shopspring/decimal"

	"producthub/internal/domain"
)

// DiscountStrategy computes the discount for an order about to be created.
// Implementations must return a non-negative amount no greater than
// originalTotal; the checkout rejects anything outside those bounds.
type DiscountStrategy interface {
	Discount(originalTotal decimal.Decimal, items []domain.OrderItem) decimal.Decimal
}

// ZeroDiscount is the default strategy: no promotion, discount is always 0.
type ZeroDiscount struct{}

func (ZeroDiscount) Discount(decimal.Decimal, []domain.OrderItem) decimal.Decimal {
	return decimal.Zero
}
