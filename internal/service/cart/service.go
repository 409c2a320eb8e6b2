package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

// ErrNoSession is returned when a cart operation has no session to act on.
var ErrNoSession = errors.New("cart session required")

// ErrProductNotFound is returned when adding a product the catalog does not know.
var ErrProductNotFound = errors.New("product not found")

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns the ledgers of all live cart sessions.
type Service struct {
	mu       sync.Mutex
	ledgers  map[string]*Ledger
	store    LineStore
	products productRepo
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// Result is a cart state together with the notifications of the mutation
// that produced it.
type Result struct {
	Cart          domain.Cart           `json:"cart"`
	Notifications []domain.Notification `json:"notifications"`
}

func New(store LineStore, products productRepo, logger *log.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		ledgers:  make(map[string]*Ledger),
		store:    store,
		products: products,
		logger:   logger,
		metrics:  m,
	}
}

// Ledger returns the session's ledger, hydrating it from storage the first
// time the session is seen in this process.
func (s *Service) Ledger(ctx context.Context, sessionID string) (*Ledger, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.ledgers[sessionID]; ok {
		return l, nil
	}
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		// An unreadable cart starts empty; the next mutation overwrites it.
		s.logger.Printf("cart service: hydrate session=%s err=%v", sessionID, err)
		lines = nil
	}
	l := NewLedger(domain.NewCart(sessionID, lines), s.store, s.logger, s.metrics)
	s.ledgers[sessionID] = l
	return l, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return l.Snapshot(), nil
}

// AddProduct snapshots the product from the catalog and adds it to the cart.
func (s *Service) AddProduct(ctx context.Context, sessionID, productID string, quantity int) (*Result, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("productId required")
	}
	if s.products == nil {
		return nil, errors.New("product repository unavailable")
	}
	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	notices := l.AddLine(ctx, product.CartLine(quantity))
	return &Result{Cart: l.Snapshot(), Notifications: notices}, nil
}

func (s *Service) RemoveLine(ctx context.Context, sessionID, productID string) (*Result, error) {
	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	notices := l.RemoveLine(ctx, strings.TrimSpace(productID))
	return &Result{Cart: l.Snapshot(), Notifications: notices}, nil
}

func (s *Service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Result, error) {
	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	notices := l.SetQuantity(ctx, strings.TrimSpace(productID), quantity)
	return &Result{Cart: l.Snapshot(), Notifications: notices}, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) (*Result, error) {
	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	notices := l.Clear(ctx)
	return &Result{Cart: l.Snapshot(), Notifications: notices}, nil
}

// Close ends a session: the ledger is dropped and its stored lines deleted.
func (s *Service) Close(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	delete(s.ledgers, sessionID)
	s.mu.Unlock()
	return s.store.Delete(ctx, sessionID)
}

// Release drops every in-memory ledger. Stored lines are kept so sessions
// rehydrate after a restart.
func (s *Service) Release() {
	s.mu.Lock()
	s.ledgers = make(map[string]*Ledger)
	s.mu.Unlock()
}
