package notifiers

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/nebula-hq/nebula-lead-relay/internal/logger"
)

// gcpPubSubNotifier publishes events to a Google Pub/Sub topic.
type gcpPubSubNotifier struct {
	id    string
	topic *pubsub.Topic
	log   logger.Logger
}

func newGCPPubSubNotifier(ctx context.Context, cfg NotifierConfig, log logger.Logger) (Notifier, error) {
	if cfg.GCPPubSub == nil {
		return nil, fmt.Errorf("notifier %q missing gcppubsub configuration", cfg.ID)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	var opts []option.ClientOption
	if cfg.GCPPubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPPubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.GCPPubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubNotifier{
		id:    cfg.ID,
		topic: client.Topic(cfg.GCPPubSub.Topic),
		log:   log,
	}, nil
}

func (g *gcpPubSubNotifier) ID() string   { return g.id }
func (g *gcpPubSubNotifier) Type() string { return TypeGCPPubSub }

func (g *gcpPubSubNotifier) Notify(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := g.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"intake_source": evt.IntakeSource,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		g.log.ErrorObj("pubsub notifier publish failed", "notifier_pubsub_error", map[string]any{
			"notifier_id": g.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	g.log.DebugObj("pubsub notifier delivered event", "notifier_pubsub_delivery", map[string]any{
		"notifier_id": g.id,
	})
	return nil
}
