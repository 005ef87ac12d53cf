package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/puntadaestudio/puntada-backend/api/controllers"
	"github.com/puntadaestudio/puntada-backend/api/middleware"
	"github.com/puntadaestudio/puntada-backend/internal/auth"
	"github.com/puntadaestudio/puntada-backend/internal/auth/gate"
	"github.com/puntadaestudio/puntada-backend/internal/cart"
	"github.com/puntadaestudio/puntada-backend/internal/catalog"
	checkoutsvc "github.com/puntadaestudio/puntada-backend/internal/checkout"
	"github.com/puntadaestudio/puntada-backend/internal/orders"
	"github.com/puntadaestudio/puntada-backend/internal/studio"
	"github.com/puntadaestudio/puntada-backend/pkg/auth/session"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/db"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	"github.com/puntadaestudio/puntada-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	sessionManager sessionManager,
	authService auth.Service,
	authGates *gate.Registry,
	catalogService catalog.Service,
	cartService cart.Service,
	studioService studio.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, authGates, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessionManager, logg)).Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(catalogService, logg))
		r.Get("/{slug}", controllers.ProductDetail(catalogService, logg))
	})

	// Guest-friendly storefront surfaces. A valid bearer token keys the
	// cart and drafts by user id, otherwise X-Session-Id does.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessionManager, logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{lineId}", controllers.CartUpdateQuantity(cartService, logg))
			r.Delete("/items/{lineId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/api/v1/studio/drafts", func(r chi.Router) {
			r.Post("/", controllers.StudioCreateDraft(studioService, logg))
			r.Route("/{draftId}", func(r chi.Router) {
				r.Get("/", controllers.StudioGetDraft(studioService, logg))
				r.Delete("/", controllers.StudioDeleteDraft(studioService, logg))
				r.Get("/price", controllers.StudioPrice(studioService, logg))
				r.Post("/add-to-cart", controllers.StudioAddToCart(studioService, logg))
				r.Post("/elements/text", controllers.StudioAddText(studioService, logg))
				r.Post("/elements/{elementId}/select", controllers.StudioSelectElement(studioService, logg))
				r.Delete("/elements/{elementId}", controllers.StudioRemoveElement(studioService, logg))
				r.Patch("/placement", controllers.StudioUpdatePlacement(studioService, logg))
				r.Post("/uploads", controllers.StudioBeginUpload(studioService, logg))
				r.Post("/uploads/{seq}", controllers.StudioCompleteUpload(studioService, logg))
			})
		})

		r.With(middleware.Idempotency(redisClient, logg)).Post("/api/v1/checkout", controllers.CheckoutSubmit(checkoutService, logg))
		r.Post("/api/v1/checkout/auth/dismiss", controllers.CheckoutDismissAuth(authGates, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Get("/api/v1/checkout/prefill", controllers.CheckoutPrefill(checkoutService, logg))
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
			r.Post("/{orderId}/mark-paid", controllers.AdminOrderMarkPaid(ordersService, logg))
		})
	})

	return r
}
