package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// statusTransitions is the full set of legal edges. delivered and cancelled
// are terminal. paid is entered via payment confirmation and still flows
// into fulfillment.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusProcessing, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next exists. Setting a status
// to its current value is not a transition and is handled by callers as a
// no-op before this check.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGHC Currency = "GHc"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// ParseCurrency validates a requested currency. The empty string defaults
// to USD.
func ParseCurrency(s string) (Currency, error) {
	if s == "" {
		return CurrencyUSD, nil
	}
	switch c := Currency(s); c {
	case CurrencyUSD, CurrencyGHC, CurrencyEUR, CurrencyGBP:
		return c, nil
	}
	return "", ErrInvalidCurrency
}

// Order is immutable after creation except through status transitions.
type Order struct {
	ID               uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID       uint64          `json:"customerId" gorm:"not null;index"`
	Status           OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	Currency         Currency        `json:"currency" gorm:"type:varchar(3);not null"`
	OriginalTotal    decimal.Decimal `json:"originalTotal" gorm:"type:decimal(10,2);not null"`
	DiscountAmount   decimal.Decimal `json:"discountAmount" gorm:"type:decimal(10,2);not null"`
	Total            decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	PaymentReference string          `json:"paymentReference,omitempty" gorm:"size:64;index"`
	Items            []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	OrderDate        time.Time       `json:"orderDate" gorm:"autoCreateTime;index"`
}

// OrderItem snapshots quantity and unit price at order-creation time; it
// never tracks later product price changes.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"not null;index"`
	ProductID uint64          `json:"productId" gorm:"not null;index"`
	Quantity  int64           `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// Subtotal is quantity times the snapshotted unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// OrderStatusHistory is an append-only log, one row per transition, served
// newest-first.
type OrderStatusHistory struct {
	ID        uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64      `json:"orderId" gorm:"not null;index"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Notes     string      `json:"notes" gorm:"type:text"`
	Timestamp time.Time   `json:"timestamp" gorm:"autoCreateTime"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
