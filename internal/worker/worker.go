package worker

import (
	"context"
	"encoding/json"
	"log"

	"bundle-service/internal/broker"
	"bundle-service/internal/models"
	"bundle-service/internal/redisclient"
	"bundle-service/internal/store"
	"bundle-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AnalyticsWorker consumes bundle events and maintains per-product
// popularity counters used by merchandising.
type AnalyticsWorker struct {
	consumer *broker.Consumer
	store    *store.Store
	redis    *redisclient.Client
	logger   *zap.Logger
}

// NewAnalyticsWorker creates a new analytics worker
func NewAnalyticsWorker(consumer *broker.Consumer, store *store.Store, redis *redisclient.Client) *AnalyticsWorker {
	return &AnalyticsWorker{
		consumer: consumer,
		store:    store,
		redis:    redis,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *AnalyticsWorker) Start(ctx context.Context) error {
	log.Println("Starting analytics worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *AnalyticsWorker) Stop() error {
	log.Println("Stopping analytics worker...")
	return w.consumer.Close()
}

func (w *AnalyticsWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		w.logger.Error("Failed to unmarshal event", zap.Error(err))
		return err
	}

	if baseEvent.EventType != models.EventTypeBundleAdded {
		return nil
	}

	processed, err := w.store.IsEventProcessed(ctx, baseEvent.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", baseEvent.EventID))
		return nil
	}

	var event models.BundleAddedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		w.logger.Error("Failed to unmarshal BundleAdded event", zap.Error(err))
		return err
	}

	for _, line := range event.Lines {
		if line.IsBox {
			continue
		}
		if err := w.redis.IncrProductPopularity(ctx, line.ProductID, line.Quantity); err != nil {
			w.logger.Error("Failed to bump product popularity",
				zap.Int64("product_id", line.ProductID),
				zap.Error(err))
		}
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	return nil
}
