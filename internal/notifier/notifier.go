// Package notifier turns order events into the customer-facing notices the
// storefront would send.
package notifier

import (
	"context"
	"fmt"
	"log"

	"storefront/internal/domain"
	"storefront/internal/messaging"
)

// Notice renders the message a customer sees for ev.
func Notice(ev domain.OrderEvent) string {
	switch ev.Type {
	case domain.EventOrderPlaced:
		return fmt.Sprintf("Thank you! Order %s with %d item(s) totalling %s has been received.",
			ev.OrderID, ev.ItemCount, formatCents(ev.TotalCents))
	case domain.EventOrderStatusChanged:
		switch ev.Status {
		case domain.OrderStatusProcessing:
			return fmt.Sprintf("Order %s is being prepared in the workshop.", ev.OrderID)
		case domain.OrderStatusShipped:
			return fmt.Sprintf("Order %s is on its way.", ev.OrderID)
		case domain.OrderStatusDelivered:
			return fmt.Sprintf("Order %s has been delivered. Enjoy your jewelry!", ev.OrderID)
		case domain.OrderStatusCancelled:
			return fmt.Sprintf("Order %s has been cancelled.", ev.OrderID)
		}
		return fmt.Sprintf("Order %s is now %s.", ev.OrderID, ev.Status)
	}
	return ""
}

// Handler logs a notice per event. Undecodable payloads are logged and
// skipped so one bad message cannot stall the consumer group.
func Handler(logger *log.Logger) messaging.Handler {
	return func(_ context.Context, payload []byte) error {
		ev, err := messaging.DecodeOrderEvent(payload)
		if err != nil {
			logger.Printf("notifier: skip payload err=%v", err)
			return nil
		}
		msg := Notice(ev)
		if msg == "" {
			logger.Printf("notifier: skip event type=%s order=%s", ev.Type, ev.OrderID)
			return nil
		}
		logger.Printf("notifier: owner=%s order=%s notice=%q", ev.OwnerID, ev.OrderID, msg)
		return nil
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
