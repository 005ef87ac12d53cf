package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	redisclient "github.com/puntadaestudio/puntada-backend/pkg/redis"
)

// Service exposes the cart operations. Every mutation rewrites the
// owner's full snapshot; the last write wins.
type Service interface {
	Get(ctx context.Context, ownerID string) (Cart, error)
	AddItem(ctx context.Context, ownerID string, input AddItemInput) (Cart, error)
	RemoveItem(ctx context.Context, ownerID string, lineID uuid.UUID) (Cart, error)
	UpdateQuantity(ctx context.Context, ownerID string, lineID uuid.UUID, quantity float64) (Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type service struct {
	store   snapshotStore
	metrics mutationCounter
	logg    *logger.Logger
	ttl     time.Duration
}

// NewService builds a cart service backed by the provided snapshot store.
func NewService(store snapshotStore, metrics mutationCounter, logg *logger.Logger, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("snapshot ttl must be positive")
	}
	return &service{
		store:   store,
		metrics: metrics,
		logg:    logg,
		ttl:     ttl,
	}, nil
}

// Get hydrates the owner's cart. Missing or unreadable snapshots degrade
// to an empty cart instead of failing the request.
func (s *service) Get(ctx context.Context, ownerID string) (Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	return s.load(ctx, ownerID)
}

// AddItem merges the selection into an existing line when the variant
// matches, otherwise prepends a new line.
func (s *service) AddItem(ctx context.Context, ownerID string, input AddItemInput) (Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if input.ProductID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}
	if input.UnitPrice.IsNegative() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}

	current, err := s.load(ctx, ownerID)
	if err != nil {
		return Cart{}, err
	}

	qty := normalizeQuantity(input.Quantity)
	lineID := input.LineID()

	merged := false
	for i := range current.Lines {
		if current.Lines[i].ID == lineID {
			current.Lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		line := Line{
			ID:            lineID,
			ProductID:     input.ProductID,
			Title:         input.Title,
			UnitPrice:     input.UnitPrice,
			Quantity:      qty,
			Size:          input.Size,
			Color:         input.Color,
			Fit:           input.Fit,
			ImageRef:      input.ImageRef,
			Customization: input.Customization,
		}
		current.Lines = append([]Line{line}, current.Lines...)
	}

	if err := s.save(ctx, ownerID, current); err != nil {
		return Cart{}, err
	}
	if s.metrics != nil {
		s.metrics.IncCartMutation("add_item")
	}
	return current, nil
}

// RemoveItem drops the line when present; removing an absent line is a
// no-op that still returns the current cart.
func (s *service) RemoveItem(ctx context.Context, ownerID string, lineID uuid.UUID) (Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	current, err := s.load(ctx, ownerID)
	if err != nil {
		return Cart{}, err
	}

	kept := current.Lines[:0]
	removed := false
	for _, line := range current.Lines {
		if line.ID == lineID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return current, nil
	}
	current.Lines = kept

	if err := s.save(ctx, ownerID, current); err != nil {
		return Cart{}, err
	}
	if s.metrics != nil {
		s.metrics.IncCartMutation("remove_item")
	}
	return current, nil
}

// UpdateQuantity replaces the line quantity, clamping the requested
// value to a whole number of at least one.
func (s *service) UpdateQuantity(ctx context.Context, ownerID string, lineID uuid.UUID, quantity float64) (Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	current, err := s.load(ctx, ownerID)
	if err != nil {
		return Cart{}, err
	}

	found := false
	for i := range current.Lines {
		if current.Lines[i].ID == lineID {
			current.Lines[i].Quantity = normalizeQuantity(quantity)
			found = true
			break
		}
	}
	if !found {
		return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	if err := s.save(ctx, ownerID, current); err != nil {
		return Cart{}, err
	}
	if s.metrics != nil {
		s.metrics.IncCartMutation("update_quantity")
	}
	return current, nil
}

// Clear deletes the owner's snapshot entirely.
func (s *service) Clear(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(ownerID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart snapshot")
	}
	if s.metrics != nil {
		s.metrics.IncCartMutation("clear")
	}
	return nil
}

func (s *service) load(ctx context.Context, ownerID string) (Cart, error) {
	raw, err := s.store.Get(ctx, s.store.CartKey(ownerID))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return Cart{}, nil
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart snapshot")
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		// Unreadable snapshots are treated as an empty cart so a bad
		// write can never lock an owner out of shopping.
		s.logg.Warn(s.logg.WithCartOwner(ctx, ownerID), "discarding corrupt cart snapshot")
		return Cart{}, nil
	}
	return cart, nil
}

func (s *service) save(ctx context.Context, ownerID string, cart Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart snapshot")
	}
	if err := s.store.Set(ctx, s.store.CartKey(ownerID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart snapshot")
	}
	return nil
}

func normalizeQuantity(quantity float64) int {
	floored := math.Floor(quantity)
	if floored < 1 || math.IsNaN(floored) {
		return 1
	}
	// Converting a float beyond the int range is undefined, so clamp
	// before the conversion.
	if floored > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(floored)
}
