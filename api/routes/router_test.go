package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/internal/auth"
	"github.com/puntadaestudio/puntada-backend/internal/auth/gate"
	"github.com/puntadaestudio/puntada-backend/internal/cart"
	checkoutsvc "github.com/puntadaestudio/puntada-backend/internal/checkout"
	"github.com/puntadaestudio/puntada-backend/internal/studio"
	pkgAuth "github.com/puntadaestudio/puntada-backend/pkg/auth"
	"github.com/puntadaestudio/puntada-backend/pkg/auth/session"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	"github.com/puntadaestudio/puntada-backend/pkg/redis"
	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.Session, error) {
	return &auth.Session{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	return &auth.Session{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error) {
	return &auth.Session{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Identity(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	return &auth.Identity{ID: userID}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubCatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return &models.Product{Slug: slug}, nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, ownerID string) (cart.Cart, error) {
	return cart.Cart{}, nil
}

func (stubCartService) AddItem(ctx context.Context, ownerID string, input cart.AddItemInput) (cart.Cart, error) {
	return cart.Cart{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, ownerID string, lineID uuid.UUID) (cart.Cart, error) {
	return cart.Cart{}, nil
}

func (stubCartService) UpdateQuantity(ctx context.Context, ownerID string, lineID uuid.UUID, quantity float64) (cart.Cart, error) {
	return cart.Cart{}, nil
}

func (stubCartService) Clear(ctx context.Context, ownerID string) error {
	return nil
}

type stubStudioService struct{}

func (stubStudioService) CreateDraft(ctx context.Context, ownerID string, productID uuid.UUID, basePrice decimal.Decimal) (*studio.Draft, error) {
	return &studio.Draft{ID: uuid.New(), ProductID: productID, BasePrice: basePrice}, nil
}

func (stubStudioService) GetDraft(ctx context.Context, ownerID string, draftID uuid.UUID) (*studio.Draft, error) {
	return &studio.Draft{ID: draftID}, nil
}

func (stubStudioService) DeleteDraft(ctx context.Context, ownerID string, draftID uuid.UUID) error {
	return nil
}

func (stubStudioService) AddTextElement(ctx context.Context, ownerID string, draftID uuid.UUID, text string, area enums.PlacementArea) (*studio.Draft, error) {
	return &studio.Draft{ID: draftID}, nil
}

func (stubStudioService) SelectElement(ctx context.Context, ownerID string, draftID, elementID uuid.UUID) (*studio.Draft, error) {
	return &studio.Draft{ID: draftID}, nil
}

func (stubStudioService) UpdatePlacement(ctx context.Context, ownerID string, draftID uuid.UUID, placement types.Placement) (*studio.Draft, error) {
	return &studio.Draft{ID: draftID}, nil
}

func (stubStudioService) RemoveElement(ctx context.Context, ownerID string, draftID, elementID uuid.UUID) (*studio.Draft, error) {
	return &studio.Draft{ID: draftID}, nil
}

func (stubStudioService) BeginImageUpload(ctx context.Context, ownerID string, draftID uuid.UUID) (uint64, error) {
	return 1, nil
}

func (stubStudioService) CompleteImageUpload(ctx context.Context, ownerID string, draftID uuid.UUID, seq uint64, data []byte, area enums.PlacementArea) (*studio.Draft, error) {
	return &studio.Draft{ID: draftID}, nil
}

func (stubStudioService) AddToCart(ctx context.Context, ownerID string, draftID uuid.UUID, input studio.AddToCartInput) (cart.Cart, error) {
	return cart.Cart{}, nil
}

func (stubStudioService) Price(draft *studio.Draft) decimal.Decimal {
	return decimal.Zero
}

type stubCheckoutService struct{}

func (stubCheckoutService) PrefillFor(ctx context.Context, buyerID uuid.UUID) (checkoutsvc.Prefill, error) {
	return checkoutsvc.Prefill{}, nil
}

func (stubCheckoutService) Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.Ticket, error) {
	return &checkoutsvc.Ticket{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) GetForBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrdersService) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersService) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrdersService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID, Status: enums.OrderStatusPaid}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		nil,
		stubSessionManager{},
		stubAuthService{},
		gate.NewRegistry(),
		stubCatalogService{},
		stubCartService{},
		stubStudioService{},
		stubCheckoutService{},
		stubOrdersService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRequireJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	orderID := uuid.New()

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/"+orderID.String(), nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/"+orderID.String(), nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCartRequiresSessionForGuests(t *testing.T) {
	router := newTestRouter(testConfig())

	anonymous := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session header got %d", resp.Code)
	}

	guest := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	guest.Header.Set("X-Session-Id", "guest-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, guest)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with session header got %d", resp.Code)
	}
}

func TestCartAcceptsBearerInsteadOfSession(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token got %d", resp.Code)
	}
}

func TestCheckoutDismissRequiresSession(t *testing.T) {
	router := newTestRouter(testConfig())

	anonymous := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/auth/dismiss", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session header got %d", resp.Code)
	}

	guest := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/auth/dismiss", nil)
	guest.Header.Set("X-Session-Id", "guest-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, guest)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with session header got %d", resp.Code)
	}
}

func TestProductListIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
