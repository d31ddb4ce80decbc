package broker

import (
	"context"
	"fmt"

	"bundle-service/internal/models"
)

// EventPublisher handles publishing bundle domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishBundleAdded publishes BundleAdded event
func (ep *EventPublisher) PublishBundleAdded(ctx context.Context, event *models.BundleAddedEvent) error {
	key := fmt.Sprintf("session-%s", event.SessionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishBundleRejected publishes BundleRejected event
func (ep *EventPublisher) PublishBundleRejected(ctx context.Context, event *models.BundleRejectedEvent) error {
	key := fmt.Sprintf("session-%s", event.SessionID)
	return ep.producer.PublishEvent(ctx, key, event)
}
