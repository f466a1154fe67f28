package port

import (
	"context"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

type OrderRepository interface {
	// SaveOrder upserts an order snapshot. A stored cancelled status is never reverted.
	SaveOrder(ctx context.Context, order domain.Order) error

	// ListOrders returns every saved order sorted by id. It is used to restore
	// the ledger on startup.
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
