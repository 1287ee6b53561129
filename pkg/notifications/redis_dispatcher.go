package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisDispatcher enqueues events onto a Redis list for the external
// delivery worker to drain.
type RedisDispatcher struct {
	client   *redis.Client
	queueKey string
	logger   *zap.Logger
}

// NewRedisDispatcher creates a dispatcher pushing to the given list key.
func NewRedisDispatcher(client *redis.Client, queueKey string, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client:   client,
		queueKey: queueKey,
		logger:   logger.Named("notification-dispatcher"),
	}
}

var _ Dispatcher = (*RedisDispatcher)(nil)

// Raise serializes the event and pushes it onto the queue.
func (d *RedisDispatcher) Raise(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := d.client.LPush(ctx, d.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	d.logger.Debug("Enqueued notification event",
		zap.String("type", string(event.Type)),
		zap.String("expert_id", event.ExpertID.String()))
	return nil
}
