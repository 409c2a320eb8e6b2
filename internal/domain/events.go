package domain

import "time"

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published on the order events topic whenever an order is
// placed or changes status.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	OwnerID    string      `json:"owner_id"`
	Status     OrderStatus `json:"status"`
	PrevStatus OrderStatus `json:"prev_status,omitempty"`
	TotalCents int64       `json:"total_cents"`
	ItemCount  int         `json:"item_count"`
	Timestamp  time.Time   `json:"timestamp"`
}
