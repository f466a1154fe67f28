package port

import (
	"context"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

type EventSink interface {
	// Record delivers an event. Sinks handle their own delivery failures.
	Record(ctx context.Context, event domain.Event)
}
