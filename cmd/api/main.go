package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/puntadaestudio/puntada-backend/api/routes"
	"github.com/puntadaestudio/puntada-backend/internal/auth"
	"github.com/puntadaestudio/puntada-backend/internal/auth/gate"
	"github.com/puntadaestudio/puntada-backend/internal/cart"
	"github.com/puntadaestudio/puntada-backend/internal/catalog"
	checkoutsvc "github.com/puntadaestudio/puntada-backend/internal/checkout"
	"github.com/puntadaestudio/puntada-backend/internal/orders"
	"github.com/puntadaestudio/puntada-backend/internal/studio"
	"github.com/puntadaestudio/puntada-backend/internal/users"
	"github.com/puntadaestudio/puntada-backend/pkg/auth/session"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/db"
	"github.com/puntadaestudio/puntada-backend/pkg/events"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	"github.com/puntadaestudio/puntada-backend/pkg/metrics"
	"github.com/puntadaestudio/puntada-backend/pkg/migrate"
	"github.com/puntadaestudio/puntada-backend/pkg/redis"
	"github.com/puntadaestudio/puntada-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	publisher, closePublisher, err := buildPublisher(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap event publisher", err)
		os.Exit(1)
	}
	defer closePublisher()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Hasher:         security.NewHasher(cfg.Password),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(redisClient, storefrontMetrics, logg, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	studioService, err := studio.NewService(redisClient, cartService, logg, cfg.Studio)
	if err != nil {
		logg.Error(context.Background(), "failed to create studio service", err)
		os.Exit(1)
	}

	authGates := gate.NewRegistry()

	checkoutService, err := checkoutsvc.NewService(
		cartService,
		redisClient,
		ordersRepo,
		userRepo,
		authGates,
		dbClient,
		publisher,
		storefrontMetrics,
		logg,
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, publisher, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			sessionManager,
			authService,
			authGates,
			catalogService,
			cartService,
			studioService,
			checkoutService,
			ordersService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildPublisher(ctx context.Context, cfg *config.Config, logg *logger.Logger) (events.Publisher, func(), error) {
	if cfg.Eventing.Transport == config.EventingTransportPubSub {
		pub, err := events.NewPubSubPublisher(ctx, cfg.Eventing, logg)
		if err != nil {
			return nil, nil, err
		}
		return pub, func() {
			if err := pub.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub publisher", err)
			}
		}, nil
	}

	bus := events.NewBus()
	return bus, func() {
		if err := bus.Close(); err != nil {
			logg.Error(ctx, "error closing event bus", err)
		}
	}, nil
}
