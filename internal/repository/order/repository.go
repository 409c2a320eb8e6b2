package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// ListFilter narrows List. Zero fields do not filter.
type ListFilter struct {
	OwnerID string
	Status  domain.OrderStatus
	// Since keeps orders created at or after this instant.
	Since time.Time
}

// StatusTotal is the number of orders in one status and the sum of their
// totals.
type StatusTotal struct {
	Status     domain.OrderStatus
	Count      int
	TotalCents int64
}

// Repository persists orders. List returns orders most recent first.
type Repository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Update loads the order, applies fn and writes the result in one
	// transaction. If fn returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(*domain.Order) error) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	StatusTotals(ctx context.Context) ([]StatusTotal, error)
	DeleteAll(ctx context.Context) (int64, error)
}
