package domain

import "time"

type OrderCreatedEvent struct {
	OrderID    uint64    `json:"orderId"`
	CustomerID uint64    `json:"customerId"`
	Total      string    `json:"total"`
	Currency   Currency  `json:"currency"`
	ItemCount  int       `json:"itemCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   uint64      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	Notes     string      `json:"notes,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
}
