package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/messaging"
	"storefront/internal/notifier"
	"storefront/internal/telemetry"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[notifier] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatalf("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, "storefront-notifier", cfg.ServiceVersion)
	if err != nil {
		logger.Fatalf("init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Printf("shutdown tracer: %v", err)
		}
	}()

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.OrderEventsTopic, cfg.NotifierGroupID)
	defer consumer.Close()

	logger.Printf("consuming %s as %s", cfg.OrderEventsTopic, cfg.NotifierGroupID)
	if err := consumer.Consume(ctx, notifier.Handler(logger)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("consume: %v", err)
	}
	logger.Printf("notifier stopped")
}
