package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

const (
	idempotencyKeyTTL = 24 * time.Hour
	EventStreamKey    = "orders:events"
	eventStreamMaxLen = 100000
	recordTimeout     = 2 * time.Second
)

type RedisAdapter struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisAdapter(client *redis.Client, logger *zap.Logger) *RedisAdapter {
	return &RedisAdapter{client: client, logger: logger}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Record appends the event to a capped stream. Failures are logged and dropped.
func (r *RedisAdapter) Record(ctx context.Context, event domain.Event) {
	if err := r.AppendEvent(ctx, event); err != nil {
		r.logger.Warn("failed to append event to redis stream",
			zap.String("kind", string(event.Kind)),
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
	}
}

func (r *RedisAdapter) AppendEvent(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: EventStreamKey,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"kind":     string(event.Kind),
			"order_id": event.OrderID,
			"payload":  payload,
		},
	}).Err()
}
