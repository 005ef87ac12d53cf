package cart

import (
	"context"
	"time"
)

// snapshotStore is the key-value surface the cart service needs from Redis.
type snapshotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(ownerID string) string
}

// mutationCounter is the metrics surface exercised on every cart write.
type mutationCounter interface {
	IncCartMutation(op string)
}
