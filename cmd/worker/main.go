package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/puntadaestudio/puntada-backend/internal/orders"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/events"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: "puntada-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load configuration", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "puntada-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.Eventing.Transport != config.EventingTransportPubSub {
		logg.Warn(ctx, "eventing transport is not pubsub, worker has nothing to consume")
		os.Exit(0)
	}

	publisher, err := events.NewPubSubPublisher(ctx, cfg.Eventing, logg)
	if err != nil {
		logg.Error(ctx, "failed to initialize pubsub client", err)
		os.Exit(1)
	}
	defer publisher.Close()

	subscription := publisher.OrdersSubscription()
	if subscription == nil {
		logg.Error(ctx, "orders subscription not configured", errors.New("set PUNTADA_PUBSUB_ORDERS_SUBSCRIPTION"))
		os.Exit(1)
	}

	consumer, err := orders.NewConsumer(subscription, logg)
	if err != nil {
		logg.Error(ctx, "failed to build order consumer", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker consuming order events")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "consumer stopped", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}
