package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errProjectIDRequired = errors.New("gcp project id is required")

// PubSubPublisher publishes order events to a Google Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	projectID string
	cfg       config.EventingConfig
}

// NewPubSubPublisher creates a Pub/Sub v2 client bound to the configured orders topic.
func NewPubSubPublisher(ctx context.Context, cfg config.EventingConfig, logg *logger.Logger) (*PubSubPublisher, error) {
	if strings.TrimSpace(cfg.GCPProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.OrdersTopic) == "" {
		return nil, errors.New("pubsub orders topic is required")
	}

	psClient, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	p := &PubSubPublisher{
		client:    psClient,
		projectID: cfg.GCPProjectID,
		cfg:       cfg,
	}
	p.publisher = psClient.Publisher(p.topicResourceName(cfg.OrdersTopic))

	if err := p.ensureTopicExists(ctx, cfg.OrdersTopic); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "pubsub publisher initialized")
	}
	return p, nil
}

// Publish marshals the event and blocks until the broker acknowledges it.
func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.publisher == nil {
		return errors.New("pubsub publisher not initialized")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.Name, err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event": event.Name,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing event %s: %w", event.Name, err)
	}
	return nil
}

// OrdersSubscription returns the configured orders subscription subscriber.
func (p *PubSubPublisher) OrdersSubscription() *pubsub.Subscriber {
	if p == nil || p.client == nil {
		return nil
	}
	name := p.subscriptionResourceName(p.cfg.OrdersSubscription)
	if name == "" {
		return nil
	}
	return p.client.Subscriber(name)
}

// Ping verifies connectivity by checking the orders topic exists.
func (p *PubSubPublisher) Ping(ctx context.Context) error {
	if p == nil {
		return errors.New("pubsub publisher not initialized")
	}
	return p.ensureTopicExists(ctx, p.cfg.OrdersTopic)
}

// Close flushes the publisher and releases client resources.
func (p *PubSubPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	if p.publisher != nil {
		p.publisher.Stop()
	}
	return p.client.Close()
}

func (p *PubSubPublisher) ensureTopicExists(ctx context.Context, name string) error {
	fullName := p.topicResourceName(name)
	if fullName == "" {
		return fmt.Errorf("topic %q not configured", name)
	}

	_, err := p.client.TopicAdminClient.GetTopic(
		ctx,
		&pubsubpb.GetTopicRequest{Topic: fullName},
	)
	if err != nil {
		// v2 uses gRPC errors; NotFound means the topic doesn't exist.
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("topic %q does not exist", name)
		}
		return fmt.Errorf("checking topic %q: %w", name, err)
	}
	return nil
}

func (p *PubSubPublisher) topicResourceName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	proj := strings.TrimSpace(p.projectID)
	if proj == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", proj, n)
}

func (p *PubSubPublisher) subscriptionResourceName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/subscriptions/") {
		return n
	}
	proj := strings.TrimSpace(p.projectID)
	if proj == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", proj, n)
}
