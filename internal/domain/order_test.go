package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewOrderComputesAmounts(t *testing.T) {
	lines := []CartLine{
		{ProductID: "p1", UnitPriceCents: 2500, Quantity: 2},
		{ProductID: "p2", UnitPriceCents: 1500, Quantity: 1},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o, err := NewOrder("o1", "u1", lines, 500, "USD", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.SubtotalCents != 6500 || o.TotalCents != 7000 || o.Status != OrderStatusPending {
		t.Fatalf("unexpected order %+v", o)
	}
	if !o.CreatedAt.Equal(now) || o.UpdatedAt != nil {
		t.Fatalf("unexpected timestamps %+v", o)
	}

	lines[0].Quantity = 99
	if o.Items[0].Quantity != 2 {
		t.Fatalf("order items must not alias the source lines")
	}
}

func TestNewOrderPreconditions(t *testing.T) {
	now := time.Now()
	if _, err := NewOrder("o1", "", []CartLine{{ProductID: "p1", Quantity: 1}}, 0, "USD", now); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := NewOrder("o1", "u1", nil, 0, "USD", now); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
}

func TestCanTransitionTable(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered},
	}
	for _, from := range OrderStatuses {
		for _, to := range OrderStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
	if CanTransition("bogus", OrderStatusPending) || CanTransition(OrderStatusPending, "bogus") {
		t.Fatalf("unknown statuses must never transition")
	}
}

func TestOrderTransitionTimestamps(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	o, err := NewOrder("o1", "u1", []CartLine{{ProductID: "p1", UnitPriceCents: 100, Quantity: 1}}, 0, "USD", created)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}

	t1 := created.Add(time.Hour)
	if err := o.Transition(OrderStatusProcessing, t1); err != nil {
		t.Fatalf("processing: %v", err)
	}
	if o.UpdatedAt == nil || !o.UpdatedAt.Equal(t1) || o.ShippedAt != nil {
		t.Fatalf("unexpected timestamps after processing %+v", o)
	}

	t2 := t1.Add(time.Hour)
	if err := o.Transition(OrderStatusShipped, t2); err != nil {
		t.Fatalf("shipped: %v", err)
	}
	if o.ShippedAt == nil || !o.ShippedAt.Equal(t2) {
		t.Fatalf("expected shippedAt %v, got %+v", t2, o.ShippedAt)
	}

	t3 := t2.Add(time.Hour)
	if err := o.Transition(OrderStatusDelivered, t3); err != nil {
		t.Fatalf("delivered: %v", err)
	}
	if o.DeliveredAt == nil || !o.DeliveredAt.Equal(t3) || !o.CreatedAt.Equal(created) {
		t.Fatalf("unexpected timestamps after delivery %+v", o)
	}
}

func TestOrderTransitionRejectsIllegal(t *testing.T) {
	o, _ := NewOrder("o1", "u1", []CartLine{{ProductID: "p1", UnitPriceCents: 100, Quantity: 1}}, 0, "USD", time.Now())
	err := o.Transition(OrderStatusShipped, time.Now())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if o.Status != OrderStatusPending || o.UpdatedAt != nil {
		t.Fatalf("order must be unchanged, got %+v", o)
	}
}

func TestTerminalStatusesRejectEverything(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		if !terminal.Terminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, to := range OrderStatuses {
			o := Order{ID: "o1", Status: terminal}
			if err := o.Transition(to, time.Now()); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s -> %s: expected invalid transition, got %v", terminal, to, err)
			}
			if o.Status != terminal {
				t.Fatalf("%s -> %s changed status to %s", terminal, to, o.Status)
			}
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if st, ok := ParseOrderStatus("  Shipped "); !ok || st != OrderStatusShipped {
		t.Fatalf("expected shipped, got %q %v", st, ok)
	}
	if _, ok := ParseOrderStatus("returned"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}
