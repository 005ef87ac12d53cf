package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event names carried on the order stream.
const (
	OrderCreatedName       = "order.created"
	OrderStatusChangedName = "order.status_changed"
)

// Event is the envelope published to the order stream.
type Event struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers events to whatever transport is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// OrderCreatedPayload describes a freshly persisted order.
type OrderCreatedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	BuyerEmail  string    `json:"buyer_email"`
	Total       string    `json:"total"`
}

// OrderStatusChangedPayload describes a status transition.
type OrderStatusChangedPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

// NewEvent wraps a payload in an envelope with a fresh ID and timestamp.
func NewEvent(name string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling %s payload: %w", name, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}
