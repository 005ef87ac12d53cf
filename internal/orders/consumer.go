package orders

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/puntadaestudio/puntada-backend/pkg/events"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
)

// Consumer tails the order event stream and writes an audit trail for the studio team.
type Consumer struct {
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds an order event consumer.
func NewConsumer(subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{subscription: subscription, logg: logg}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.process(ctx, msg)
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) {
	eventName := msg.Attributes["event"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event":      eventName,
	})

	var envelope events.Event
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode event envelope", err)
		return
	}
	logCtx = c.logg.WithField(logCtx, "event_id", envelope.ID)

	switch envelope.Name {
	case events.OrderCreatedName:
		var payload events.OrderCreatedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.logg.Error(logCtx, "failed to parse order.created payload", err)
			return
		}
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"order_id":     payload.OrderID.String(),
			"order_number": payload.OrderNumber,
			"total":        payload.Total,
		})
		c.logg.Info(logCtx, "order ticket issued")

	case events.OrderStatusChangedName:
		var payload events.OrderStatusChangedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.logg.Error(logCtx, "failed to parse order.status_changed payload", err)
			return
		}
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"order_id": payload.OrderID.String(),
			"from":     payload.From,
			"to":       payload.To,
		})
		c.logg.Info(logCtx, "order status changed")

	default:
		c.logg.Info(logCtx, "skipping unknown event")
	}
}
