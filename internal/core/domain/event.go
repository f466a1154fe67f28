package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventOrderCreated   EventKind = "order.created"
	EventOrderHighValue EventKind = "order.high_value"
	EventOrderCancelled EventKind = "order.cancelled"
	EventRefundFailed   EventKind = "order.refund_failed"
)

// Event is a record of something that happened to an order.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Kind       EventKind       `json:"kind"`
	OrderID    int64           `json:"order_id"`
	Customer   string          `json:"customer"`
	Amount     decimal.Decimal `json:"amount"`
	Total      decimal.Decimal `json:"total"`
	Message    string          `json:"message"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewEvent(kind EventKind, order Order, message string, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		OrderID:    order.ID,
		Customer:   order.Customer,
		Amount:     order.Amount,
		Total:      order.Total(),
		Message:    message,
		OccurredAt: at,
	}
}
