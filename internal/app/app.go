// Package app builds the storefront's long-lived collaborators once at startup
// and tears them down together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/cartstore"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/messaging"
	"storefront/internal/metrics"
	customerrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	sessionrepo "storefront/internal/repository/session"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	"storefront/internal/service/session"
	"storefront/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App owns the pool, the cart ledgers, the services and the event producer.
type App struct {
	Config  config.Config
	Logger  *log.Logger
	DB      *pgxpool.Pool
	Metrics *metrics.Metrics

	Products  *productsvc.Service
	Customers *customersvc.Service
	Sessions  *session.Service
	Carts     *cartsvc.Service
	Orders    *ordersvc.Service

	producer       *messaging.Producer
	shutdownTracer func(context.Context) error
}

// New connects to the database and wires every service. Kafka publishing is
// enabled only when brokers are configured.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	store, err := cartstore.NewFileStore(cfg.CartStoreDir)
	if err != nil {
		pool.Close()
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("open cart store: %w", err)
	}

	a := &App{
		Config:         cfg,
		Logger:         logger,
		DB:             pool,
		Metrics:        metrics.New("api"),
		Sessions:       session.New(sessionrepo.NewPostgres(pool, logger), cfg.SessionTTL),
		shutdownTracer: shutdownTracer,
	}

	productRepo := productrepo.NewPostgres(pool, logger)
	a.Products = productsvc.New(productRepo, cfg.Currency)
	a.Customers = customersvc.New(customerrepo.NewPostgres(pool, logger))
	a.Carts = cartsvc.New(store, a.Products, logger, a.Metrics)

	opts := []ordersvc.Option{
		ordersvc.WithLogger(logger),
		ordersvc.WithMetrics(a.Metrics),
		ordersvc.WithCurrency(cfg.Currency),
	}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		opts = append(opts, ordersvc.WithPublisher(a.producer))
		logger.Printf("app: publishing order events to %s", cfg.OrderEventsTopic)
	}
	a.Orders = ordersvc.New(orderrepo.NewPostgres(pool, logger), opts...)

	return a, nil
}

// HTTPDeps exposes the services to the HTTP layer.
func (a *App) HTTPDeps() httpserver.Deps {
	return httpserver.Deps{
		Sessions:      a.Sessions,
		Customers:     a.Customers,
		Products:      a.Products,
		Carts:         a.Carts,
		Orders:        a.Orders,
		Metrics:       a.Metrics,
		AdminToken:    a.Config.AdminToken,
		CORSOrigins:   a.Config.CORSAllowedOrigins,
		ShippingCents: a.Config.ShippingCostCents,
		Currency:      a.Config.Currency,
	}
}

// Close releases ledgers, flushes the producer and tracer, then closes the pool.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	a.Carts.Release()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close producer: %w", err))
		}
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	a.DB.Close()
	return errors.Join(errs...)
}
