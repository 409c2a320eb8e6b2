package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	sessionrepo "storefront/internal/repository/session"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	"storefront/internal/service/session"

	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type memLineStore struct {
	mu    sync.Mutex
	lines map[string][]domain.CartLine
}

func (s *memLineStore) Load(_ context.Context, id string) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneLines(s.lines[id]), nil
}

func (s *memLineStore) Save(_ context.Context, id string, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[id] = domain.CloneLines(lines)
	return nil
}

func (s *memLineStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, id)
	return nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (r *memOrderRepo) Create(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append([]domain.Order{o.Clone()}, r.orders...)
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			c := o.Clone()
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memOrderRepo) Update(_ context.Context, id string, fn func(*domain.Order) error) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID != id {
			continue
		}
		c := o.Clone()
		if err := fn(&c); err != nil {
			return nil, err
		}
		r.orders[i] = c.Clone()
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memOrderRepo) List(_ context.Context, f orderrepo.ListFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		if f.OwnerID != "" && o.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
			continue
		}
		out = append(out, o.Clone())
	}
	return out, nil
}

func (r *memOrderRepo) StatusTotals(_ context.Context) ([]orderrepo.StatusTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := map[domain.OrderStatus]int{}
	out := []orderrepo.StatusTotal{}
	for _, o := range r.orders {
		i, ok := idx[o.Status]
		if !ok {
			i = len(out)
			idx[o.Status] = i
			out = append(out, orderrepo.StatusTotal{Status: o.Status})
		}
		out[i].Count++
		out[i].TotalCents += o.TotalCents
	}
	return out, nil
}

func (r *memOrderRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.orders))
	r.orders = nil
	return n, nil
}

type stubCustomerAuthSvc struct {
	customer *domain.Customer
	loginErr error
	signErr  error
}

func (s *stubCustomerAuthSvc) Signup(_ context.Context, _ customersvc.SignupInput) (*domain.Customer, error) {
	return s.customer, s.signErr
}

func (s *stubCustomerAuthSvc) Login(_ context.Context, _, _ string) (*domain.Customer, string, error) {
	return s.customer, "access", s.loginErr
}

func (s *stubCustomerAuthSvc) LookupByToken(_ context.Context, token string) (*domain.Customer, error) {
	if token != "access" || s.customer == nil {
		return nil, customersvc.ErrInvalidToken
	}
	return s.customer, nil
}

func (s *stubCustomerAuthSvc) Logout(string) {}

func (s *stubCustomerAuthSvc) AccessTTLSeconds() int { return 3600 }

type stubProductService struct {
	products map[string]domain.Product
}

func (s *stubProductService) ListByCategory(_ context.Context, _ string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.Get(ctx, id)
}

func (s *stubProductService) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = "new-id"
	return &p, nil
}

func (s *stubProductService) Delete(_ context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

type testEnv struct {
	router *gin.Engine
	orders *memOrderRepo
}

func newTestEnv(t *testing.T, customer *domain.Customer) *testEnv {
	t.Helper()
	return newTestEnvWith(t, customer, &memLineStore{lines: map[string][]domain.CartLine{}}, sessionrepo.NewMemory())
}

// newTestEnvWith builds a router over the given cart and session storage, so
// a second env over the same storage behaves like a restarted process.
func newTestEnvWith(t *testing.T, customer *domain.Customer, lines *memLineStore, sessions sessionrepo.Repository) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := &stubProductService{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Silver Ring", PriceCents: 25},
		"p2": {ID: "p2", Name: "Beaded Bracelet", PriceCents: 15},
	}}
	repo := &memOrderRepo{}
	router, err := buildRouter(logDiscard(), nil, Deps{
		Sessions:      session.New(sessions, 0),
		Customers:     &stubCustomerAuthSvc{customer: customer},
		Products:      products,
		Carts:         cartsvc.New(lines, products, nil, nil),
		Orders:        ordersvc.New(repo),
		AdminToken:    "admin-secret",
		ShippingCents: 5,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, orders: repo}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/sessions", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", rec.Code, rec.Body.String())
	}
	var s session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s.Token
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without db, got %d", rec.Code)
	}
}

func TestReadyHandler_PingError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(pingFunc(func(context.Context) error { return errors.New("down") })))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCart_RequiresSession(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/cart", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].Level != domain.NotificationError {
		t.Fatalf("expected an error notification, got %+v", body)
	}

	rec = env.do(t, http.MethodGet, "/cart", "", map[string]string{headerSessionToken: "bogus"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestCart_AddUpdateRemove(t *testing.T) {
	env := newTestEnv(t, nil)
	h := map[string]string{headerSessionToken: env.newSession(t)}

	rec := env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1","quantity":2}`, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("add line: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p2"}`, h)
	var view cartView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.TotalPrice.CentAmount != 65 || view.ItemCount != 3 {
		t.Fatalf("expected total 65 over 3 items, got %+v", view)
	}
	if len(view.Notifications) == 0 || view.Notifications[0].Kind != domain.NoticeCartAdded {
		t.Fatalf("expected added notification, got %+v", view.Notifications)
	}

	rec = env.do(t, http.MethodPut, "/cart/lines/p1", `{"quantity":0}`, h)
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Lines) != 1 || view.TotalPrice.CentAmount != 15 {
		t.Fatalf("quantity 0 should remove the line, got %+v", view)
	}

	rec = env.do(t, http.MethodDelete, "/cart/lines/p2", "", h)
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Lines) != 0 || view.TotalPrice.CentAmount != 0 {
		t.Fatalf("expected empty cart, got %+v", view)
	}

	rec = env.do(t, http.MethodPost, "/cart/lines", `{"productId":"missing"}`, h)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/cart/lines/p1", `{}`, h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without quantity, got %d", rec.Code)
	}
}

func TestCheckout_FullFlow(t *testing.T) {
	env := newTestEnv(t, &domain.Customer{ID: "u1", Email: "u1@example.com"})
	h := map[string]string{
		headerSessionToken: env.newSession(t),
		"Authorization":    "Bearer access",
	}

	env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1","quantity":2}`, h)
	env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p2","quantity":1}`, h)

	rec := env.do(t, http.MethodPost, "/checkout", "", h)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: %d %s", rec.Code, rec.Body.String())
	}
	var order orderView
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Subtotal.CentAmount != 65 || order.Total.CentAmount != 70 || order.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.OwnerID != "u1" {
		t.Fatalf("order should be owned by the signed-in customer, got %q", order.OwnerID)
	}

	rec = env.do(t, http.MethodGet, "/cart", "", h)
	var cart cartView
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cart.Lines) != 0 || cart.TotalPrice.CentAmount != 0 {
		t.Fatalf("cart should be empty after checkout, got %+v", cart)
	}

	rec = env.do(t, http.MethodPost, "/checkout", "", h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}
	if len(env.orders.orders) != 1 {
		t.Fatalf("empty checkout must not add an order, got %d", len(env.orders.orders))
	}

	rec = env.do(t, http.MethodGet, "/me/orders", "", h)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), order.ID) {
		t.Fatalf("order history missing new order: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCheckout_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, nil)
	h := map[string]string{headerSessionToken: env.newSession(t)}
	env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1"}`, h)

	rec := env.do(t, http.MethodPost, "/checkout", "", h)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(env.orders.orders) != 0 {
		t.Fatalf("no order should be created")
	}
}

func TestAdmin_RequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/admin/orders", "", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/admin/orders", "", map[string]string{headerAdminToken: "wrong"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong token, got %d", rec.Code)
	}
}

func TestAdmin_TransitionAndStats(t *testing.T) {
	env := newTestEnv(t, &domain.Customer{ID: "u1"})
	h := map[string]string{
		headerSessionToken: env.newSession(t),
		"Authorization":    "Bearer access",
	}
	env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1","quantity":2}`, h)
	rec := env.do(t, http.MethodPost, "/checkout", "", h)
	var order orderView
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}

	admin := map[string]string{headerAdminToken: "admin-secret"}
	path := "/admin/orders/" + order.ID + "/status"

	rec = env.do(t, http.MethodPatch, path, `{"status":"shipped"}`, admin)
	if rec.Code != http.StatusConflict {
		t.Fatalf("pending -> shipped should conflict, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPatch, path, `{"status":"teleported"}`, admin)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unknown status should conflict, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPatch, path, `{"status":"processing"}`, admin)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"processing"`) {
		t.Fatalf("transition: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPatch, "/admin/orders/unknown/status", `{"status":"processing"}`, admin)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/admin/orders?status=processing", "", admin)
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Fatalf("expected one processing order: %s", rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, "/admin/orders?status=pending&days=7", "", admin)
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Fatalf("expected no pending orders: %s", rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, "/admin/orders?days=abc", "", admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad days, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/admin/orders/stats", "", admin)
	var stats statisticsView
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalOrders != 1 || stats.TotalRevenue.CentAmount != 55 || stats.ByStatus[domain.OrderStatusProcessing] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = env.do(t, http.MethodDelete, "/admin/orders", "", admin)
	if rec.Code != http.StatusOK || len(env.orders.orders) != 0 {
		t.Fatalf("clear orders: %d", rec.Code)
	}
}

func TestAuth_TokenInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		Sessions:  session.New(nil, 0),
		Customers: &stubCustomerAuthSvc{loginErr: customersvc.ErrInvalidCredentials},
		Products:  &stubProductService{},
		Carts:     cartsvc.New(&memLineStore{lines: map[string][]domain.CartLine{}}, nil, nil, nil),
		Orders:    ordersvc.New(&memOrderRepo{}),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	body := `username=user%40example.com&password=badpass`
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Email or password is incorrect.") {
		t.Fatalf("expected credentials notification, got %s", rec.Body.String())
	}
}

func TestAuth_SignupAndMe(t *testing.T) {
	env := newTestEnv(t, &domain.Customer{ID: "cust-id", Email: "me@example.com"})

	rec := env.do(t, http.MethodPost, "/auth/signup", `{"email":"me@example.com","password":"Abcdefg1"}`, nil)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"email":"me@example.com"`) {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/auth/signup", `{"email":"me@example.com"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without password, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodGet, "/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer access"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"me@example.com"`) {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}
}

func TestEndSessionDropsCart(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.newSession(t)
	h := map[string]string{headerSessionToken: token}
	env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1"}`, h)

	if rec := env.do(t, http.MethodDelete, "/sessions", "", h); rec.Code != http.StatusNoContent {
		t.Fatalf("end session: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/cart", "", h); rec.Code != http.StatusUnauthorized {
		t.Fatalf("ended session should be rejected, got %d", rec.Code)
	}
}

func TestSessionCartSurvivesRestart(t *testing.T) {
	lines := &memLineStore{lines: map[string][]domain.CartLine{}}
	sessions := sessionrepo.NewMemory()

	first := newTestEnvWith(t, nil, lines, sessions)
	h := map[string]string{headerSessionToken: first.newSession(t)}
	if rec := first.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1","quantity":2}`, h); rec.Code != http.StatusOK {
		t.Fatalf("add line: %d %s", rec.Code, rec.Body.String())
	}

	restarted := newTestEnvWith(t, nil, lines, sessions)
	rec := restarted.do(t, http.MethodGet, "/cart", "", h)
	if rec.Code != http.StatusOK {
		t.Fatalf("token should still resolve after restart, got %d %s", rec.Code, rec.Body.String())
	}
	var cart cartView
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cart.Lines) != 1 || cart.TotalPrice.CentAmount != 50 {
		t.Fatalf("expected hydrated cart worth 50, got %+v", cart)
	}
}

func TestCart_SetQuantityOnAbsentLineIsSilent(t *testing.T) {
	env := newTestEnv(t, nil)
	h := map[string]string{headerSessionToken: env.newSession(t)}
	env.do(t, http.MethodPost, "/cart/lines", `{"productId":"p1"}`, h)

	rec := env.do(t, http.MethodPut, "/cart/lines/p2", `{"quantity":3}`, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("set quantity: %d %s", rec.Code, rec.Body.String())
	}
	var view cartView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Notifications) != 0 || len(view.Lines) != 1 {
		t.Fatalf("absent product should change nothing, got %+v", view)
	}
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/products/p1", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("get product: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/products/zzz", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	admin := map[string]string{headerAdminToken: "admin-secret"}
	rec := env.do(t, http.MethodPut, "/admin/products", `{"key":"k","name":"Opal","priceCents":900}`, admin)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"inStock":true`) {
		t.Fatalf("upsert: %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodDelete, "/admin/products/p2", "", admin); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
}
