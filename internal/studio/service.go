package studio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/internal/cart"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	redisclient "github.com/puntadaestudio/puntada-backend/pkg/redis"
	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

// Service exposes the design session operations.
type Service interface {
	CreateDraft(ctx context.Context, ownerID string, productID uuid.UUID, basePrice decimal.Decimal) (*Draft, error)
	GetDraft(ctx context.Context, ownerID string, draftID uuid.UUID) (*Draft, error)
	DeleteDraft(ctx context.Context, ownerID string, draftID uuid.UUID) error
	AddTextElement(ctx context.Context, ownerID string, draftID uuid.UUID, text string, area enums.PlacementArea) (*Draft, error)
	SelectElement(ctx context.Context, ownerID string, draftID, elementID uuid.UUID) (*Draft, error)
	UpdatePlacement(ctx context.Context, ownerID string, draftID uuid.UUID, placement types.Placement) (*Draft, error)
	RemoveElement(ctx context.Context, ownerID string, draftID, elementID uuid.UUID) (*Draft, error)
	BeginImageUpload(ctx context.Context, ownerID string, draftID uuid.UUID) (uint64, error)
	CompleteImageUpload(ctx context.Context, ownerID string, draftID uuid.UUID, seq uint64, data []byte, area enums.PlacementArea) (*Draft, error)
	AddToCart(ctx context.Context, ownerID string, draftID uuid.UUID, input AddToCartInput) (cart.Cart, error)
	Price(draft *Draft) decimal.Decimal
}

type service struct {
	store          draftStore
	carts          cartAdder
	logg           *logger.Logger
	prices         priceTable
	ttl            time.Duration
	maxUploadBytes int64
}

// NewService builds a studio service backed by the provided draft store.
func NewService(store draftStore, carts cartAdder, logg *logger.Logger, cfg config.StudioConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.DraftTTL <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	prices, err := newPriceTable(cfg)
	if err != nil {
		return nil, err
	}
	return &service{
		store:          store,
		carts:          carts,
		logg:           logg,
		prices:         prices,
		ttl:            cfg.DraftTTL,
		maxUploadBytes: cfg.MaxUploadBytes,
	}, nil
}

// CreateDraft starts an empty design session for the product.
func (s *service) CreateDraft(ctx context.Context, ownerID string, productID uuid.UUID, basePrice decimal.Decimal) (*Draft, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft owner is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if basePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be non-negative")
	}

	draft := &Draft{
		ID:        uuid.New(),
		ProductID: productID,
		BasePrice: basePrice,
		Elements:  []Element{},
	}
	if err := s.save(ctx, ownerID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *service) GetDraft(ctx context.Context, ownerID string, draftID uuid.UUID) (*Draft, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft owner is required")
	}
	return s.load(ctx, ownerID, draftID)
}

func (s *service) DeleteDraft(ctx context.Context, ownerID string, draftID uuid.UUID) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft owner is required")
	}
	if err := s.store.Del(ctx, s.store.DesignKey(ownerID, draftID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting design draft")
	}
	return nil
}

// AddTextElement appends a text element with a centered default placement
// and selects it.
func (s *service) AddTextElement(ctx context.Context, ownerID string, draftID uuid.UUID, text string, area enums.PlacementArea) (*Draft, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "text is required")
	}
	if !area.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid placement area %q", area))
	}

	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	element := Element{
		ID:        uuid.New(),
		Kind:      enums.ElementKindText,
		Text:      &trimmed,
		Placement: defaultPlacement(area),
	}
	draft.Elements = append(draft.Elements, element)
	draft.SelectedID = &element.ID

	if err := s.save(ctx, ownerID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SelectElement marks the element as the single recipient of placement input.
func (s *service) SelectElement(ctx context.Context, ownerID string, draftID, elementID uuid.UUID) (*Draft, error) {
	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, el := range draft.Elements {
		if el.ID == elementID {
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "element not found")
	}

	draft.SelectedID = &elementID
	if err := s.save(ctx, ownerID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// UpdatePlacement routes new placement values to the selected element
// only. Coordinates are clamped into [0,100].
func (s *service) UpdatePlacement(ctx context.Context, ownerID string, draftID uuid.UUID, placement types.Placement) (*Draft, error) {
	if !placement.Area.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid placement area %q", placement.Area))
	}
	if placement.Scale <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scale must be positive")
	}

	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	selected := draft.Selected()
	if selected == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no element selected")
	}

	placement.X = clampPercent(placement.X)
	placement.Y = clampPercent(placement.Y)
	selected.Placement = placement

	if err := s.save(ctx, ownerID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// RemoveElement drops the element and clears the selection when it
// pointed at the removed element.
func (s *service) RemoveElement(ctx context.Context, ownerID string, draftID, elementID uuid.UUID) (*Draft, error) {
	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	kept := draft.Elements[:0]
	removed := false
	for _, el := range draft.Elements {
		if el.ID == elementID {
			removed = true
			continue
		}
		kept = append(kept, el)
	}
	if !removed {
		return draft, nil
	}
	draft.Elements = kept
	if draft.SelectedID != nil && *draft.SelectedID == elementID {
		draft.SelectedID = nil
	}

	if err := s.save(ctx, ownerID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// BeginImageUpload reserves the next upload sequence number. The caller
// decodes the image off the request path and reports back through
// CompleteImageUpload with the same number.
func (s *service) BeginImageUpload(ctx context.Context, ownerID string, draftID uuid.UUID) (uint64, error) {
	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return 0, err
	}

	draft.UploadSeq++
	if err := s.save(ctx, ownerID, draft); err != nil {
		return 0, err
	}
	return draft.UploadSeq, nil
}

// CompleteImageUpload encodes the uploaded bytes into a data URI and
// appends the resulting element. Completions arriving after a newer
// upload has already been applied are dropped so concurrent uploads
// cannot interleave; a failed decode leaves the element list unchanged.
func (s *service) CompleteImageUpload(ctx context.Context, ownerID string, draftID uuid.UUID, seq uint64, data []byte, area enums.PlacementArea) (*Draft, error) {
	if !area.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid placement area %q", area))
	}

	dataURI, err := s.encodeImage(data)
	if err != nil {
		return nil, err
	}

	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	if seq == 0 || seq > draft.UploadSeq {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown upload sequence")
	}
	if seq <= draft.AppliedSeq {
		// A newer completion already landed; this one is stale.
		s.logg.Warn(ctx, "dropping stale image upload completion")
		return draft, nil
	}

	element := Element{
		ID:        uuid.New(),
		Kind:      enums.ElementKindImage,
		ImageData: &dataURI,
		Placement: defaultPlacement(area),
	}
	draft.Elements = append(draft.Elements, element)
	draft.SelectedID = &element.ID
	draft.AppliedSeq = seq

	if err := s.save(ctx, ownerID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// AddToCart prices the draft and attaches its customization payload to
// a cart line for the same owner. The draft stays alive until its TTL so
// the shopper can keep tweaking and re-add.
func (s *service) AddToCart(ctx context.Context, ownerID string, draftID uuid.UUID, input AddToCartInput) (cart.Cart, error) {
	if strings.TrimSpace(input.Title) == "" {
		return cart.Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}

	draft, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return cart.Cart{}, err
	}

	updated, err := s.carts.AddItem(ctx, ownerID, cart.AddItemInput{
		ProductID:     draft.ProductID,
		Title:         input.Title,
		UnitPrice:     s.prices.Price(draft),
		Quantity:      input.Quantity,
		Size:          input.Size,
		Color:         input.Color,
		Fit:           input.Fit,
		Customization: draft.Payload(),
	})
	if err != nil {
		return cart.Cart{}, err
	}
	s.logg.Info(ctx, "design draft added to cart")
	return updated, nil
}

// Price computes the configured garment price for the draft.
func (s *service) Price(draft *Draft) decimal.Decimal {
	if draft == nil {
		return decimal.Zero
	}
	return s.prices.Price(draft)
}

func (s *service) encodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the upload size limit")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported upload type %s", contentType))
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func (s *service) load(ctx context.Context, ownerID string, draftID uuid.UUID) (*Draft, error) {
	raw, err := s.store.Get(ctx, s.store.DesignKey(ownerID, draftID.String()))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design draft not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading design draft")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		// Unreadable drafts are discarded the same way corrupt cart
		// snapshots are.
		s.logg.Warn(ctx, "discarding corrupt design draft")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design draft not found")
	}
	return &draft, nil
}

func (s *service) save(ctx context.Context, ownerID string, draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding design draft")
	}
	if err := s.store.Set(ctx, s.store.DesignKey(ownerID, draft.ID.String()), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving design draft")
	}
	return nil
}

func defaultPlacement(area enums.PlacementArea) types.Placement {
	return types.Placement{X: 50, Y: 50, Rotation: 0, Scale: 1, Area: area}
}

func clampPercent(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
