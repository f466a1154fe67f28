package port

import (
	"context"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

type PaymentReverser interface {
	// ReversePayment refunds a cancelled order.
	ReversePayment(ctx context.Context, order domain.Order) error
}
