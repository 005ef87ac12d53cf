package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/internal/auth"
	"github.com/puntadaestudio/puntada-backend/internal/cart"
	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
)

// cartAccess is the slice of the cart service checkout needs.
type cartAccess interface {
	Get(ctx context.Context, ownerID string) (cart.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

// guardStore holds the at-most-one in-flight submission lock.
type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutGuardKey(sessionID string) string
}

// userLoader resolves the authenticated identity for guard prefill.
type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// identityGate parks an unauthenticated submission until a sign-in
// settles it for the session, or the shopper backs out.
type identityGate interface {
	Await(ctx context.Context, sessionID string) (*auth.Identity, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// submitMetrics is the metrics surface exercised per submission.
type submitMetrics interface {
	IncOrderSubmitted()
	IncOrderFailed()
	ObserveSubmitDuration(duration time.Duration)
}
