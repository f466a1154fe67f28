package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/order-ledger/internal/core/domain"
	"github.com/rl1809/order-ledger/internal/port"
)

// PersistWorker saves queued order snapshots until the queue is closed.
func PersistWorker(id int, queue <-chan domain.Order, repo port.OrderRepository, logger *zap.Logger, timeout time.Duration) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)

		if err := repo.SaveOrder(ctx, order); err != nil {
			logger.Error("failed to save order",
				zap.Int("worker", id),
				zap.Int64("order_id", order.ID),
				zap.String("status", string(order.Status)),
				zap.Error(err))
		} else {
			logger.Debug("saved order",
				zap.Int("worker", id),
				zap.Int64("order_id", order.ID),
				zap.String("status", string(order.Status)))
		}

		cancel()
	}
}
