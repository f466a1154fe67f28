// Package sink provides event sinks for the order ledger.
package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/order-ledger/internal/core/domain"
	"github.com/rl1809/order-ledger/internal/port"
)

// ZapSink writes each event as a structured log entry.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger.Named("orders")}
}

func (s *ZapSink) Record(ctx context.Context, event domain.Event) {
	fields := []zap.Field{
		zap.String("event_id", event.ID.String()),
		zap.String("kind", string(event.Kind)),
		zap.Int64("order_id", event.OrderID),
		zap.String("customer", event.Customer),
		zap.Stringer("amount", event.Amount),
		zap.Stringer("total", event.Total),
		zap.Time("occurred_at", event.OccurredAt),
	}

	if event.Kind == domain.EventRefundFailed {
		s.logger.Warn(event.Message, fields...)
		return
	}
	s.logger.Info(event.Message, fields...)
}

// MultiSink fans an event out to every sink in order.
type MultiSink struct {
	sinks []port.EventSink
}

func NewMultiSink(sinks ...port.EventSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Add(s port.EventSink) {
	m.sinks = append(m.sinks, s)
}

func (m *MultiSink) Record(ctx context.Context, event domain.Event) {
	for _, s := range m.sinks {
		s.Record(ctx, event)
	}
}
