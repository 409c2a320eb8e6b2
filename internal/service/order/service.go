package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	orderrepo "storefront/internal/repository/order"

	"github.com/google/uuid"
)

// CartSource is the cart an order is placed from. Take must empty the cart and
// hand back its previous contents atomically; Restore puts lines back when
// the order could not be stored.
type CartSource interface {
	Take(ctx context.Context) (domain.Cart, []domain.Notification)
	Restore(ctx context.Context, lines []domain.CartLine) []domain.Notification
}

type eventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev domain.OrderEvent) error
}

// Service places orders and governs their status lifecycle.
type Service struct {
	repo      orderrepo.Repository
	publisher eventPublisher
	logger    *log.Logger
	metrics   *metrics.Metrics
	currency  string
	now       func() time.Time
	newID     func() (string, error)

	publishTimeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

type Option func(*Service)

// WithPublisher sends order events after every successful write.
func WithPublisher(p eventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithPublishTimeout bounds how long a single event publish may take. The
// publish is detached from the caller's cancellation.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(repo orderrepo.Repository, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		logger:         log.New(io.Discard, "", 0),
		currency:       "USD",
		publishTimeout: defaultPublishTimeout,
		now:            func() time.Time { return time.Now().UTC() },
		newID: func() (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceResult is a created order and the notifications raised while placing it.
type PlaceResult struct {
	Order         domain.Order          `json:"order"`
	Notifications []domain.Notification `json:"notifications"`
}

// PlaceOrder takes the cart's lines and freezes them into a pending order
// owned by ownerID. The cart is emptied in the same step, so concurrent
// checkouts of one session produce a single order. Nothing is written when the
// owner is missing or the cart is empty, and the lines go back into the cart
// when the order cannot be stored.
func (s *Service) PlaceOrder(ctx context.Context, ownerID string, cart CartSource, shippingCents int64) (*PlaceResult, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if cart == nil {
		return nil, domain.ErrEmptyCart
	}
	taken, notices := cart.Take(ctx)
	if taken.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	o, err := s.freeze(ctx, ownerID, taken, shippingCents)
	if err != nil {
		cart.Restore(ctx, taken.Lines)
		s.logger.Printf("order service: restored %d lines to session=%s after error=%v", len(taken.Lines), taken.SessionID, err)
		return nil, err
	}
	s.metrics.OrderPlaced()
	s.logger.Printf("order service: placed id=%s owner=%s items=%d total_cents=%d", o.ID, o.OwnerID, len(o.Items), o.TotalCents)

	notices = append(notices, domain.Notification{
		Kind:    domain.NoticeOrderPlaced,
		Level:   domain.NotificationInfo,
		Message: fmt.Sprintf("Order %s placed", o.ID),
	})

	s.publish(ctx, domain.OrderEvent{
		Type:       domain.EventOrderPlaced,
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		ItemCount:  itemCount(o.Items),
		Timestamp:  o.CreatedAt,
	})

	return &PlaceResult{Order: o.Clone(), Notifications: notices}, nil
}

func (s *Service) freeze(ctx context.Context, ownerID string, taken domain.Cart, shippingCents int64) (*domain.Order, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}
	o, err := domain.NewOrder(id, ownerID, taken.Lines, shippingCents, s.currency, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, *o); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}
	return o, nil
}

// TransitionStatus moves an order to status to if the transition table
// allows it. A rejected transition leaves the stored order untouched.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrOrderNotFound
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, to)
	}

	var from domain.OrderStatus
	updated, err := s.repo.Update(ctx, orderID, func(o *domain.Order) error {
		from = o.Status
		return o.Transition(to, s.now())
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrOrderNotFound
		case errors.Is(err, domain.ErrInvalidTransition):
			s.metrics.OrderTransition(string(from), string(to), "rejected")
			s.logger.Printf("order service: rejected transition id=%s %s -> %s", orderID, from, to)
			return nil, err
		}
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.metrics.OrderTransition(string(from), string(to), "applied")
	s.logger.Printf("order service: transition id=%s %s -> %s", orderID, from, to)

	s.publish(ctx, domain.OrderEvent{
		Type:       domain.EventOrderStatusChanged,
		OrderID:    updated.ID,
		OwnerID:    updated.OwnerID,
		Status:     updated.Status,
		PrevStatus: from,
		TotalCents: updated.TotalCents,
		ItemCount:  itemCount(updated.Items),
		Timestamp:  *updated.UpdatedAt,
	})
	return updated, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// ClearAll deletes every order.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Printf("order service: cleared %d orders", n)
	return n, nil
}

func (s *Service) OrdersForUser(ctx context.Context, ownerID string) ([]domain.Order, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.List(ctx, orderrepo.ListFilter{OwnerID: ownerID})
}

func (s *Service) AllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx, orderrepo.ListFilter{})
}

func (s *Service) OrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if !status.Valid() {
		return []domain.Order{}, nil
	}
	return s.repo.List(ctx, orderrepo.ListFilter{Status: status})
}

// RecentOrders returns orders created within the last days days; days <= 0
// means seven. A non-empty status narrows the window further.
func (s *Service) RecentOrders(ctx context.Context, days int, status domain.OrderStatus) ([]domain.Order, error) {
	return s.repo.List(ctx, orderrepo.ListFilter{
		Status: status,
		Since:  recentCutoff(days, s.now()),
	})
}

func (s *Service) Statistics(ctx context.Context) (domain.OrderStatistics, error) {
	totals, err := s.repo.StatusTotals(ctx)
	if err != nil {
		return domain.OrderStatistics{}, err
	}
	return statisticsFromTotals(totals), nil
}

// publish sends ev with its own deadline so a slow or unreachable broker
// cannot hold up the request that caused the event.
func (s *Service) publish(ctx context.Context, ev domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		s.logger.Printf("order service: publish %s id=%s err=%v", ev.Type, ev.OrderID, err)
	}
}

func itemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
