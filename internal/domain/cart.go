package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a customer's pre-purchase selection. One active cart per customer,
// created lazily on first access and emptied the moment an order is derived
// from it.
type Cart struct {
	ID         uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID uint64     `json:"customerId" gorm:"not null;uniqueIndex"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CartItem holds one product selection. At most one row per (cart, product);
// adding the same product again increments the quantity instead.
type CartItem struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	CartID    uint64    `json:"cartId" gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID uint64    `json:"productId" gorm:"not null;uniqueIndex:idx_cart_product"`
	Quantity  int64     `json:"quantity" gorm:"not null"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Subtotal is quantity times the product's current price. Only meaningful
// when the Product association is loaded.
func (i CartItem) Subtotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// TotalAmount sums the live subtotals of all items in the cart.
func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemsCount is the total number of units across all cart items.
func (c Cart) ItemsCount() int64 {
	var n int64
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}
