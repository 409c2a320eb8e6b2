package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	"storefront/internal/service/session"
	"storefront/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type sessionService interface {
	Issue(ctx context.Context) (*session.Session, error)
	Lookup(ctx context.Context, token string) (string, error)
	End(ctx context.Context, token string) (string, error)
}

type customerAuthService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	Logout(token string)
	AccessTTLSeconds() int
}

type productService interface {
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type cartService interface {
	Ledger(ctx context.Context, sessionID string) (*cartsvc.Ledger, error)
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	AddProduct(ctx context.Context, sessionID, productID string, quantity int) (*cartsvc.Result, error)
	RemoveLine(ctx context.Context, sessionID, productID string) (*cartsvc.Result, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*cartsvc.Result, error)
	Clear(ctx context.Context, sessionID string) (*cartsvc.Result, error)
	Close(ctx context.Context, sessionID string) error
}

type orderService interface {
	PlaceOrder(ctx context.Context, ownerID string, cart ordersvc.CartSource, shippingCents int64) (*ordersvc.PlaceResult, error)
	TransitionStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ClearAll(ctx context.Context) (int64, error)
	OrdersForUser(ctx context.Context, ownerID string) ([]domain.Order, error)
	AllOrders(ctx context.Context) ([]domain.Order, error)
	OrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	RecentOrders(ctx context.Context, days int, status domain.OrderStatus) ([]domain.Order, error)
	Statistics(ctx context.Context) (domain.OrderStatistics, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API is built from.
type Deps struct {
	Sessions      sessionService
	Customers     customerAuthService
	Products      productService
	Carts         cartService
	Orders        orderService
	Metrics       *metrics.Metrics
	AdminToken    string
	CORSOrigins   []string
	ShippingCents int64
	Currency      string
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("httpserver: session service required")
	case d.Customers == nil:
		return errors.New("httpserver: customer service required")
	case d.Products == nil:
		return errors.New("httpserver: product service required")
	case d.Carts == nil:
		return errors.New("httpserver: cart service required")
	case d.Orders == nil:
		return errors.New("httpserver: order service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db pinger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Currency == "" {
		deps.Currency = "USD"
	}

	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		telemetry.GinRoute(),
		deps.Metrics.Middleware(),
		cors.New(corsConfig(deps.CORSOrigins)),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	h := &handlers{deps: deps, logger: logger}

	router.POST("/sessions", h.createSession)
	router.DELETE("/sessions", h.endSession)

	router.POST("/auth/signup", h.signup)
	router.POST("/auth/token", h.token)
	router.DELETE("/auth/token", h.logout)

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	cart := router.Group("/cart", requireSession(deps.Sessions))
	cart.GET("", h.getCart)
	cart.POST("/lines", h.addLine)
	cart.PUT("/lines/:productId", h.setQuantity)
	cart.DELETE("/lines/:productId", h.removeLine)
	cart.DELETE("", h.clearCart)

	router.POST("/checkout", requireSession(deps.Sessions), requireCustomer(deps.Customers), h.checkout)

	me := router.Group("/me", requireCustomer(deps.Customers))
	me.GET("", h.me)
	me.GET("/orders", h.myOrders)

	admin := router.Group("/admin", requireAdmin(deps.AdminToken))
	admin.PUT("/products", h.upsertProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/stats", h.orderStats)
	admin.GET("/orders/:id", h.adminGetOrder)
	admin.PATCH("/orders/:id/status", h.transitionOrder)
	admin.DELETE("/orders", h.clearOrders)

	return router, nil
}

// corsConfig allows the configured storefront origins, or any origin without
// credentials when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerSessionToken, headerAdminToken},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
