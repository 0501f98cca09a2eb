package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// PubSub publishes one message per stored record to a Google Cloud Pub/Sub
// topic. Publishing is fire and forget; the client batches and retries in
// the background.
type PubSub struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	runID  string
	logger *zap.Logger
}

type storedEvent struct {
	RunID   string `json:"run_id"`
	PlaceID string `json:"place_id,omitempty"`
	URL     string `json:"url"`
}

// NewPubSub connects to Pub/Sub and verifies the topic exists. It
// authenticates via Application Default Credentials.
func NewPubSub(ctx context.Context, projectID, topicID, runID string, logger *zap.Logger) (*PubSub, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close pubsub client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("check topic %s: %w", topicID, err)
	}
	if !exists {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close pubsub client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}
	return &PubSub{client: client, topic: topic, runID: runID, logger: logger}, nil
}

// RecordStored publishes the event without waiting for server
// acknowledgement.
func (p *PubSub) RecordStored(ctx context.Context, placeID, url string) {
	data, err := json.Marshal(storedEvent{RunID: p.runID, PlaceID: placeID, URL: url})
	if err != nil {
		p.logger.Warn("marshal pubsub event", zap.Error(err))
		return
	}
	_ = p.topic.Publish(ctx, &pubsub.Message{Data: data})
}

// Close flushes pending publishes and closes the client.
func (p *PubSub) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
