package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/events"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type statusCounter interface {
	IncStatusChange(status string)
}

// Service exposes order reads and the single admin status transition.
type Service interface {
	GetForBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher events.Publisher
	metrics   statusCounter
	logg      *logger.Logger
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo Repository, tx txRunner, publisher events.Publisher, metrics statusCounter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	return &service{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		metrics:   metrics,
		logg:      logg,
	}, nil
}

// GetForBuyer loads one of the buyer's own orders with its item snapshot.
func (s *service) GetForBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id are required")
	}

	order, err := s.repo.FindByIDForBuyer(ctx, orderID, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return order, nil
}

// ListForBuyer returns the buyer's orders, newest first.
func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	orders, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return orders, nil
}

// GetByID loads any order. Callers gate this behind the admin role.
func (s *service) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return order, nil
}

// MarkPaid applies the only status transition an order supports:
// pendiente to pagado. Any other starting state is a conflict. The
// status change and its event are the mutation; everything else on the
// ticket stays frozen.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s, only %s orders can be marked paid", order.Status, enums.OrderStatusPending)).
				WithDetails(map[string]string{"status": order.Status.String()})
		}

		if err := repo.UpdateStatus(ctx, orderID, enums.OrderStatusPaid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
		}
		order.Status = enums.OrderStatusPaid
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitStatusChanged(ctx, updated)
	if s.metrics != nil {
		s.metrics.IncStatusChange(enums.OrderStatusPaid.String())
	}
	return updated, nil
}

func (s *service) emitStatusChanged(ctx context.Context, order *models.Order) {
	event, err := events.NewEvent(events.OrderStatusChangedName, events.OrderStatusChangedPayload{
		OrderID: order.ID,
		From:    enums.OrderStatusPending.String(),
		To:      order.Status.String(),
	})
	if err != nil {
		s.logg.Error(ctx, "building status change event", err)
		return
	}
	// The transition is already committed; a publish failure is logged,
	// not surfaced to the admin.
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "publishing status change event", err)
	}
}
