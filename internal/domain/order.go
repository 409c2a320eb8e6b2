package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// orderTransitions is the complete set of legal status changes. Delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

// ParseOrderStatus normalizes s and reports whether it names a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	_, ok := orderTransitions[st]
	return st, ok
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransition reports whether from -> to is listed in the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a placed purchase. Items and amounts are frozen at creation; only
// the status and its timestamps change afterwards.
type Order struct {
	ID            string      `json:"id"`
	OwnerID       string      `json:"ownerId"`
	Items         []CartLine  `json:"items"`
	SubtotalCents int64       `json:"subtotalCents"`
	ShippingCents int64       `json:"shippingCents"`
	TotalCents    int64       `json:"totalCents"`
	Currency      string      `json:"currency"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     *time.Time  `json:"updatedAt,omitempty"`
	ShippedAt     *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt   *time.Time  `json:"deliveredAt,omitempty"`
}

// NewOrder snapshots lines into a pending order.
func NewOrder(id, ownerID string, lines []CartLine, shippingCents int64, currency string, now time.Time) (*Order, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthenticated
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if shippingCents < 0 {
		shippingCents = 0
	}
	items := CloneLines(lines)
	var subtotal int64
	for _, l := range items {
		subtotal += l.TotalCents()
	}
	return &Order{
		ID:            id,
		OwnerID:       ownerID,
		Items:         items,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TotalCents:    subtotal + shippingCents,
		Currency:      currency,
		Status:        OrderStatusPending,
		CreatedAt:     now,
	}, nil
}

// Transition moves the order to status to. An unlisted transition returns an
// error wrapping ErrInvalidTransition and leaves the order untouched.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = &now
	switch to {
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	}
	return nil
}

// Clone returns a copy of o that shares no item or timestamp storage.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneLines(o.Items)
	out.UpdatedAt = cloneTime(o.UpdatedAt)
	out.ShippedAt = cloneTime(o.ShippedAt)
	out.DeliveredAt = cloneTime(o.DeliveredAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// OrderStatistics aggregates the order collection.
type OrderStatistics struct {
	TotalOrders       int                 `json:"totalOrders"`
	ByStatus          map[OrderStatus]int `json:"byStatus"`
	TotalRevenueCents int64               `json:"totalRevenueCents"`
}
