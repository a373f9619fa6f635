package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventProducer publishes HAF events to a topic.
type EventProducer interface {
	Enabled() bool
	Send(ctx context.Context, key string, event any) error
	Close() error
}

// Producer writes JSON events keyed by ticket id. With no brokers or topic
// every method is a no-op.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a producer for topic.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(brokers) == 0 || topic == "" {
		return &Producer{logger: logger}
	}
	return &Producer{
		logger: logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Enabled reports whether messages are actually sent.
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

// Send marshals event and writes it under key.
func (p *Producer) Send(ctx context.Context, key string, event any) error {
	if p.writer == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("kafka: write event: %w", err)
	}
	p.logger.Debug("event sent to kafka", zap.String("topic", p.writer.Topic), zap.String("key", key))
	return nil
}

// Close closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
