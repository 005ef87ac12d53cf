package studio

import (
	"context"
	"time"

	"github.com/puntadaestudio/puntada-backend/internal/cart"
)

// draftStore is the key-value surface the studio service needs from Redis.
type draftStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DesignKey(ownerID, designID string) string
}

// cartAdder is the slice of the cart service the studio needs to turn a
// finished draft into a cart line.
type cartAdder interface {
	AddItem(ctx context.Context, ownerID string, input cart.AddItemInput) (cart.Cart, error)
}
