package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackandwhiteonline/storefront/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes notices as JSON, keyed by shopper id so one shopper's
// notices stay ordered on a partition.
type KafkaPublisher struct {
	writer  messageWriter
	breaker *circuitbreaker.Breaker
	timeout time.Duration
	logger  *slog.Logger
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
}

func NewKafkaPublisher(writer messageWriter, breaker *circuitbreaker.Breaker, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.DefaultSettings("notify-kafka"), logger)
	}
	return &KafkaPublisher{
		writer:  writer,
		breaker: breaker,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Notify publishes n and logs failures.
func (p *KafkaPublisher) Notify(ctx context.Context, n Notice) {
	if err := p.Publish(ctx, n); err != nil {
		p.logger.WarnContext(ctx, "failed to publish notice", "kind", n.Kind, "shopper_id", n.ShopperID, "error", err)
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n Notice) error {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.ShopperID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.Kind)},
		},
	}

	return p.breaker.Do(func() error {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.writer.WriteMessages(writeCtx, msg)
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
