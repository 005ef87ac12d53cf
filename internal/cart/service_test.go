package cart

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	redisclient "github.com/puntadaestudio/puntada-backend/pkg/redis"
	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

type stubStore struct {
	values map[string]string
	getErr error
	setErr error
	delErr error
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	raw, ok := s.values[key]
	if !ok {
		return "", redisclient.Nil
	}
	return raw, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubStore) CartKey(ownerID string) string {
	return "puntada:cart:" + ownerID
}

func testService(t *testing.T, store *stubStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	svc, err := NewService(store, nil, logg, time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func addInput(productID uuid.UUID) AddItemInput {
	return AddItemInput{
		ProductID: productID,
		Title:     "Remera básica",
		UnitPrice: decimal.RequireFromString("19.99"),
		Quantity:  1,
		Size:      "M",
		Color:     "negro",
	}
}

func TestAddItemMergesIdenticalSelections(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()
	productID := uuid.New()

	first, err := svc.AddItem(ctx, "owner-1", addInput(productID))
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	second, err := svc.AddItem(ctx, "owner-1", addInput(productID))
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	if len(second.Lines) != 1 {
		t.Fatalf("expected single merged line, got %d", len(second.Lines))
	}
	if second.Lines[0].ID != first.Lines[0].ID {
		t.Fatal("expected merge to reuse the deterministic line id")
	}
	if second.Lines[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", second.Lines[0].Quantity)
	}
	if second.Count() != 2 {
		t.Fatalf("expected count 2, got %d", second.Count())
	}
}

func TestAddItemDistinctCustomizationPrependsNewLine(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()
	productID := uuid.New()

	if _, err := svc.AddItem(ctx, "owner-1", addInput(productID)); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	text := "Puntada"
	customized := addInput(productID)
	customized.Customization = &types.CustomizationPayload{
		Elements: []types.CustomizationElement{{
			Kind: "text",
			Text: &text,
			Placement: types.Placement{
				X: 50, Y: 40, Scale: 1, Area: "frente",
			},
		}},
	}

	cart, err := svc.AddItem(ctx, "owner-1", customized)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Customization == nil {
		t.Fatal("expected the newest line to be prepended")
	}
	if cart.Lines[0].ID == cart.Lines[1].ID {
		t.Fatal("expected distinct customizations to produce distinct line ids")
	}
}

func TestQuantityClampsToWholeMinimumOne(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()
	productID := uuid.New()

	input := addInput(productID)
	input.Quantity = 2.9
	cart, err := svc.AddItem(ctx, "owner-1", input)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if cart.Lines[0].Quantity != 2 {
		t.Fatalf("expected fractional quantity floored to 2, got %d", cart.Lines[0].Quantity)
	}

	cart, err = svc.UpdateQuantity(ctx, "owner-1", cart.Lines[0].ID, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if cart.Lines[0].Quantity != 1 {
		t.Fatalf("expected zero clamped to 1, got %d", cart.Lines[0].Quantity)
	}

	cart, err = svc.UpdateQuantity(ctx, "owner-1", cart.Lines[0].ID, 5.7)
	if err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected 5.7 floored to 5, got %d", cart.Lines[0].Quantity)
	}
}

func TestQuantityClampsOversizedValues(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()

	input := addInput(uuid.New())
	input.Quantity = 1e30
	cart, err := svc.AddItem(ctx, "owner-1", input)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if cart.Lines[0].Quantity != math.MaxInt32 {
		t.Fatalf("expected oversized quantity clamped to %d, got %d", math.MaxInt32, cart.Lines[0].Quantity)
	}

	cart, err = svc.UpdateQuantity(ctx, "owner-1", cart.Lines[0].ID, 1e30)
	if err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if cart.Lines[0].Quantity != math.MaxInt32 {
		t.Fatalf("expected oversized quantity clamped to %d, got %d", math.MaxInt32, cart.Lines[0].Quantity)
	}
	if cart.Lines[0].Quantity < 1 {
		t.Fatalf("quantity fell below the floor: %d", cart.Lines[0].Quantity)
	}
	if cart.Total().IsNegative() {
		t.Fatalf("total went negative: %s", cart.Total())
	}
}

func TestUpdateQuantityUnknownLineIsNotFound(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)

	_, err := svc.UpdateQuantity(context.Background(), "owner-1", uuid.New(), 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRemoveAbsentLineIsNoop(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "owner-1", addInput(uuid.New())); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	cart, err := svc.RemoveItem(ctx, "owner-1", uuid.New())
	if err != nil {
		t.Fatalf("RemoveItem returned error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected untouched cart, got %d lines", len(cart.Lines))
	}
}

func TestTotalUsesExactDecimalArithmetic(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()

	input := addInput(uuid.New())
	input.Quantity = 3
	cart, err := svc.AddItem(ctx, "owner-1", input)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	want := decimal.RequireFromString("59.97")
	if !cart.Total().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cart.Total())
	}
}

func TestCorruptSnapshotDegradesToEmptyCart(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	store.values[store.CartKey("owner-1")] = "{not valid json"
	svc := testService(t, store)

	cart, err := svc.Get(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(cart.Lines) != 0 || cart.Count() != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestSaveFailureSurfacesDependencyError(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	store.setErr = errors.New("redis down")
	svc := testService(t, store)

	_, err := svc.AddItem(context.Background(), "owner-1", addInput(uuid.New()))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestClearDeletesSnapshot(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := testService(t, store)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "owner-1", addInput(uuid.New())); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if err := svc.Clear(ctx, "owner-1"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	cart, err := svc.Get(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart after clear, got %d lines", len(cart.Lines))
	}
}
