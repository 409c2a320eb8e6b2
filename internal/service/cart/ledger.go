package cart

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

// LineStore is the durable storage a ledger writes its lines to after every
// mutation.
type LineStore interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

// Ledger owns the cart of a single session. Every mutation recomputes the
// total, persists the lines and returns the notifications to show.
type Ledger struct {
	mu      sync.Mutex
	cart    *domain.Cart
	store   LineStore
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewLedger wraps an already hydrated cart.
func NewLedger(cart *domain.Cart, store LineStore, logger *log.Logger, m *metrics.Metrics) *Ledger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Ledger{cart: cart, store: store, logger: logger, metrics: m}
}

// AddLine merges line into the cart.
func (l *Ledger) AddLine(ctx context.Context, line domain.CartLine) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cart.Add(line)
	l.metrics.CartMutation("add")
	notice := info(domain.NoticeCartAdded, fmt.Sprintf("Added %s to your cart", displayName(line.Name, line.ProductID)))
	return l.persist(ctx, notice)
}

// RemoveLine deletes the line for productID. An absent product changes
// nothing and returns no notifications.
func (l *Ledger) RemoveLine(ctx context.Context, productID string) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.nameOf(productID)
	if !l.cart.Remove(productID) {
		return nil
	}
	l.metrics.CartMutation("remove")
	notice := info(domain.NoticeCartRemoved, fmt.Sprintf("Removed %s from your cart", name))
	return l.persist(ctx, notice)
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
// Like RemoveLine it is silent for a product that is not in the cart.
func (l *Ledger) SetQuantity(ctx context.Context, productID string, quantity int) []domain.Notification {
	if quantity <= 0 {
		return l.RemoveLine(ctx, productID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.nameOf(productID)
	if !l.cart.SetQuantity(productID, quantity) {
		return nil
	}
	l.metrics.CartMutation("set_quantity")
	notice := info(domain.NoticeCartQuantity, fmt.Sprintf("Updated %s quantity to %d", name, quantity))
	return l.persist(ctx, notice)
}

// Clear empties the cart.
func (l *Ledger) Clear(ctx context.Context) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cart.Clear()
	l.metrics.CartMutation("clear")
	return l.persist(ctx, info(domain.NoticeCartCleared, "Your cart is now empty"))
}

// Take empties the cart and returns what it held in one critical section, so
// two checkouts of the same session cannot both see the same lines and a
// concurrent AddLine lands either in the taken cart or in the emptied one.
// An empty cart is returned as is without touching the store.
func (l *Ledger) Take(ctx context.Context) (domain.Cart, []domain.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()

	taken := l.cart.Clone()
	if taken.IsEmpty() {
		return taken, nil
	}
	l.cart.Clear()
	l.metrics.CartMutation("checkout")
	return taken, l.persist(ctx, info(domain.NoticeCartCleared, "Your cart is now empty"))
}

// Restore merges lines back into the cart, typically after a checkout whose
// order could not be stored. Lines added since the Take are kept.
func (l *Ledger) Restore(ctx context.Context, lines []domain.CartLine) []domain.Notification {
	if len(lines) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	merged := append(domain.CloneLines(lines), l.cart.Lines...)
	*l.cart = *domain.NewCart(l.cart.SessionID, merged)
	l.metrics.CartMutation("restore")
	return l.persist(ctx, info(domain.NoticeCartRestored, "Your cart was restored"))
}

// Snapshot returns a deep copy of the current cart.
func (l *Ledger) Snapshot() domain.Cart {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cart.Clone()
}

// persist writes the lines. A failed write is reported as a notification and
// the in-memory cart keeps the mutation.
func (l *Ledger) persist(ctx context.Context, notice domain.Notification) []domain.Notification {
	out := []domain.Notification{notice}
	if err := l.store.Save(ctx, l.cart.SessionID, domain.CloneLines(l.cart.Lines)); err != nil {
		l.logger.Printf("cart ledger: persist session=%s err=%v", l.cart.SessionID, fmt.Errorf("%w: %v", domain.ErrStoragePersist, err))
		l.metrics.CartPersistFailure()
		out = append(out, domain.Notification{
			Kind:    domain.NoticeStorageFailure,
			Level:   domain.NotificationError,
			Message: "We couldn't save your cart. Your changes are kept for this visit.",
		})
	}
	return out
}

func (l *Ledger) nameOf(productID string) string {
	for _, line := range l.cart.Lines {
		if line.ProductID == productID {
			return displayName(line.Name, productID)
		}
	}
	return displayName("", productID)
}

func displayName(name, productID string) string {
	if name != "" {
		return name
	}
	return "item " + productID
}

func info(kind, msg string) domain.Notification {
	return domain.Notification{Kind: kind, Level: domain.NotificationInfo, Message: msg}
}
