package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

const publishTimeout = 5 * time.Second

// Kafka publishes conversion events to a topic, keyed by transaction id so
// all events for one transaction land on the same partition. Write failures
// are logged and dropped; the conversion result already belongs to the
// caller by the time the event is published.
type Kafka struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafka(brokers []string, topic string, logger *slog.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (k *Kafka) Publish(ctx context.Context, event domain.ConversionEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		k.logger.Error("failed to marshal audit event",
			slog.String("transaction_id", event.TransactionID), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		k.logger.Error("failed to publish audit event",
			slog.String("transaction_id", event.TransactionID), slog.Any("error", err))
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
