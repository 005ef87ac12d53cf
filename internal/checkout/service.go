package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/internal/cart"
	"github.com/puntadaestudio/puntada-backend/internal/orders"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/events"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
)

// Service drives a submission from a collected guard to a persisted
// order ticket. A failed submission leaves the cart exactly as it was.
type Service interface {
	PrefillFor(ctx context.Context, buyerID uuid.UUID) (Prefill, error)
	Submit(ctx context.Context, input SubmitInput) (*Ticket, error)
}

type service struct {
	carts     cartAccess
	guard     guardStore
	ordersRep orders.Repository
	users     userLoader
	gates     identityGate
	tx        txRunner
	publisher events.Publisher
	metrics   submitMetrics
	logg      *logger.Logger
	cfg       config.CheckoutConfig
}

// NewService builds a checkout service backed by the provided stack.
func NewService(
	carts cartAccess,
	guard guardStore,
	ordersRep orders.Repository,
	users userLoader,
	gates identityGate,
	tx txRunner,
	publisher events.Publisher,
	metrics submitMetrics,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if guard == nil {
		return nil, fmt.Errorf("guard store required")
	}
	if ordersRep == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if gates == nil {
		return nil, fmt.Errorf("identity gate required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.SubmitTimeout <= 0 {
		return nil, fmt.Errorf("submit timeout must be positive")
	}
	if cfg.SubmitGuardTTL <= 0 {
		return nil, fmt.Errorf("submit guard ttl must be positive")
	}
	if cfg.AuthWaitTimeout <= 0 {
		return nil, fmt.Errorf("auth wait timeout must be positive")
	}
	return &service{
		carts:     carts,
		guard:     guard,
		ordersRep: ordersRep,
		users:     users,
		gates:     gates,
		tx:        tx,
		publisher: publisher,
		metrics:   metrics,
		logg:      logg,
		cfg:       cfg,
	}, nil
}

// PrefillFor returns the authenticated identity's contact details so the
// guard form starts filled in.
func (s *service) PrefillFor(ctx context.Context, buyerID uuid.UUID) (Prefill, error) {
	if buyerID == uuid.Nil {
		return Prefill{}, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	user, err := s.users.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Prefill{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return Prefill{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return Prefill{
		Name:  user.FullName,
		Email: user.Email,
		Phone: user.Phone,
	}, nil
}

// Submit runs the whole submission: guard validation, the sign-in wait
// for guests, the in-flight lock, the order transaction, and the cart
// clear. The cart is cleared only after the order is confirmed persisted.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Ticket, error) {
	started := time.Now()
	ticket, err := s.submit(ctx, input)
	if s.metrics != nil {
		s.metrics.ObserveSubmitDuration(time.Since(started))
		if err != nil {
			s.metrics.IncOrderFailed()
		} else {
			s.metrics.IncOrderSubmitted()
		}
	}
	return ticket, err
}

func (s *service) submit(ctx context.Context, input SubmitInput) (*Ticket, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id is required")
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	guard, err := validateGuard(input.Guard)
	if err != nil {
		return nil, err
	}

	current, err := s.carts.Get(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if len(current.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	buyerID := input.BuyerID
	if buyerID == nil {
		// A guest must sign in before the order is taken. Park the
		// submission until a login settles the session's gate, the
		// shopper dismisses it, or the wait times out.
		waitCtx, cancel := context.WithTimeout(ctx, s.cfg.AuthWaitTimeout)
		identity, err := s.gates.Await(waitCtx, input.SessionID)
		cancel()
		if err != nil {
			return nil, err
		}
		buyerID = &identity.ID
		s.logg.Info(ctx, "sign-in completed, resuming submission")
	}

	guardKey := s.guard.CheckoutGuardKey(input.SessionID)
	acquired, err := s.guard.SetNX(ctx, guardKey, "1", s.cfg.SubmitGuardTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring submission guard")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in flight")
	}
	defer func() {
		if err := s.guard.Del(context.WithoutCancel(ctx), guardKey); err != nil {
			s.logg.Warn(ctx, "releasing submission guard failed")
		}
	}()

	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	order := buildOrder(guard, buyerID, current)
	err = s.tx.WithTx(submitCtx, func(tx *gorm.DB) error {
		repo := s.ordersRep.WithTx(tx)
		if _, err := repo.Create(submitCtx, order); err != nil {
			return err
		}
		// Reload inside the tx to pick up the generated order number
		// and timestamps.
		persisted, err := repo.FindByID(submitCtx, order.ID)
		if err != nil {
			return err
		}
		order = persisted
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
	}

	// The order exists; from here on failures are logged but the
	// submission is a success.
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if err := s.carts.Clear(ctx, input.OwnerID); err != nil {
		s.logg.Error(ctx, "clearing cart after checkout", err)
	}
	s.emitOrderCreated(ctx, order)
	s.logg.Info(ctx, "order submitted")

	link := buildWhatsAppLink(s.cfg.ContactPhone, s.cfg.ContactMessagePtrn, order.OrderNumber, order.Total().StringFixed(2))
	return ticketFromOrder(order, link), nil
}

func (s *service) emitOrderCreated(ctx context.Context, order *models.Order) {
	event, err := events.NewEvent(events.OrderCreatedName, events.OrderCreatedPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerEmail:  order.BuyerEmail,
		Total:       order.Total().StringFixed(2),
	})
	if err != nil {
		s.logg.Error(ctx, "building order created event", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logg.Error(ctx, "publishing order created event", err)
	}
}

func validateGuard(guard Guard) (Guard, error) {
	if !guard.TermsAccepted {
		return Guard{}, pkgerrors.New(pkgerrors.CodeValidation, "terms must be accepted")
	}

	guard.Name = strings.TrimSpace(guard.Name)
	guard.Email = strings.TrimSpace(guard.Email)
	guard.Phone = strings.TrimSpace(guard.Phone)
	guard.Address = strings.TrimSpace(guard.Address)
	guard.City = strings.TrimSpace(guard.City)
	guard.Notes = strings.TrimSpace(guard.Notes)

	missing := []string{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", guard.Name},
		{"email", guard.Email},
		{"phone", guard.Phone},
		{"address", guard.Address},
		{"city", guard.City},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return Guard{}, pkgerrors.New(pkgerrors.CodeValidation, "missing buyer details").
			WithDetails(map[string]any{"missing": missing})
	}
	return guard, nil
}

func buildOrder(guard Guard, buyerID *uuid.UUID, current cart.Cart) *models.Order {
	items := make([]models.OrderItem, 0, len(current.Lines))
	for _, line := range current.Lines {
		items = append(items, models.OrderItem{
			ID:            uuid.New(),
			ProductID:     line.ProductID,
			Title:         line.Title,
			Size:          line.Size,
			Color:         line.Color,
			Fit:           line.Fit,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			ImageRef:      line.ImageRef,
			Customization: line.Customization,
		})
	}
	return &models.Order{
		ID:          uuid.New(),
		Status:      enums.OrderStatusPending,
		BuyerID:     buyerID,
		BuyerName:   guard.Name,
		BuyerEmail:  guard.Email,
		BuyerPhone:  guard.Phone,
		ShipAddress: guard.Address,
		ShipCity:    guard.City,
		Notes:       guard.Notes,
		Items:       items,
	}
}
