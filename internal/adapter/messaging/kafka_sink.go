package messaging

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes order events as JSON, keyed by order id so that all
// events of one order land on the same partition.
type KafkaSink struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaSink(brokers []string, topic string, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

func (k *KafkaSink) Record(ctx context.Context, event domain.Event) {
	if err := k.Publish(ctx, event); err != nil {
		k.logger.Warn("failed to publish event",
			zap.String("kind", string(event.Kind)),
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
	}
}

func (k *KafkaSink) Publish(ctx context.Context, event domain.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
		Time: event.OccurredAt,
	})
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
