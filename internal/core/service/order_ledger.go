package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/order-ledger/internal/core/domain"
	"github.com/rl1809/order-ledger/internal/port"
)

// OrderLedger assigns order ids, derives tax and tracks the order lifecycle.
// It is safe for concurrent use. Sinks, the payment hook and the persistence
// queue are called after the ledger lock is released.
type OrderLedger struct {
	mu          sync.Mutex
	nextOrderID int64
	orders      map[int64]*domain.Order
	closed      bool
	inflight    sync.WaitGroup

	sink         port.EventSink
	payments     port.PaymentReverser
	persistQueue chan domain.Order
	now          func() time.Time
}

type Option func(*OrderLedger)

func WithEventSink(sink port.EventSink) Option {
	return func(s *OrderLedger) {
		s.sink = sink
	}
}

func WithPaymentReverser(payments port.PaymentReverser) Option {
	return func(s *OrderLedger) {
		s.payments = payments
	}
}

// WithPersistQueue makes every state change available on GetPersistQueue.
// Someone must drain the queue or callers block once it is full.
func WithPersistQueue(queueSize int) Option {
	return func(s *OrderLedger) {
		s.persistQueue = make(chan domain.Order, queueSize)
	}
}

// WithOrders rebuilds the ledger from previously persisted orders. New ids
// continue after the largest restored id.
func WithOrders(orders []domain.Order) Option {
	return func(s *OrderLedger) {
		for _, o := range orders {
			if o.ID <= 0 {
				continue
			}
			restored := o
			s.orders[o.ID] = &restored
			if o.ID >= s.nextOrderID {
				s.nextOrderID = o.ID + 1
			}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderLedger) {
		s.now = now
	}
}

func NewOrderLedger(opts ...Option) *OrderLedger {
	s := &OrderLedger{
		nextOrderID: 1,
		orders:      make(map[int64]*domain.Order),
		sink:        discardSink{},
		payments:    NoopPaymentReverser{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderLedger) CreateOrder(ctx context.Context, customer string, amount decimal.Decimal) (int64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, domain.ErrLedgerClosed
	}
	order, err := domain.NewOrder(s.nextOrderID, customer, amount, s.now())
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.nextOrderID++
	stored := order
	s.orders[order.ID] = &stored
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.sink.Record(ctx, domain.NewEvent(domain.EventOrderCreated, order,
		fmt.Sprintf("Created order %d for %s amount=%s total=%s", order.ID, order.Customer, order.Amount, order.Total()),
		order.CreatedAt))
	if domain.IsHighValue(order.Amount) {
		s.sink.Record(ctx, domain.NewEvent(domain.EventOrderHighValue, order,
			fmt.Sprintf("High value order %d", order.ID), order.CreatedAt))
	}
	s.persist(order)

	return order.ID, nil
}

func (s *OrderLedger) CancelOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return fmt.Errorf("%w: orderId must be positive", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrLedgerClosed
	}
	stored, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, orderID)
	}
	if err := stored.Cancel(s.now()); err != nil {
		s.mu.Unlock()
		return err
	}
	order := *stored
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.sink.Record(ctx, domain.NewEvent(domain.EventOrderCancelled, order,
		fmt.Sprintf("Cancelling order %d and issuing refund", order.ID), order.UpdatedAt))
	if err := s.payments.ReversePayment(ctx, order); err != nil {
		s.sink.Record(ctx, domain.NewEvent(domain.EventRefundFailed, order,
			fmt.Sprintf("Refund for order %d failed: %v", order.ID, err), s.now()))
	}
	s.persist(order)

	return nil
}

func (s *OrderLedger) IsHighValue(amount decimal.Decimal) bool {
	return domain.IsHighValue(amount)
}

func (s *OrderLedger) GetOrder(orderID int64) (domain.Order, error) {
	if orderID <= 0 {
		return domain.Order{}, fmt.Errorf("%w: orderId must be positive", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: id %d", domain.ErrNotFound, orderID)
	}
	return *stored, nil
}

// ListOrders returns a copy of every order sorted by id.
func (s *OrderLedger) ListOrders() []domain.Order {
	s.mu.Lock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b domain.Order) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// GetPersistQueue returns nil unless the ledger was built WithPersistQueue.
func (s *OrderLedger) GetPersistQueue() <-chan domain.Order {
	return s.persistQueue
}

// Close rejects further changes, waits for in-flight ones and closes the
// persistence queue.
func (s *OrderLedger) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
	if s.persistQueue != nil {
		close(s.persistQueue)
	}
}

func (s *OrderLedger) persist(order domain.Order) {
	if s.persistQueue != nil {
		s.persistQueue <- order
	}
}

// NoopPaymentReverser accepts every reversal without doing anything.
type NoopPaymentReverser struct{}

func (NoopPaymentReverser) ReversePayment(context.Context, domain.Order) error {
	return nil
}

type discardSink struct{}

func (discardSink) Record(context.Context, domain.Event) {}
