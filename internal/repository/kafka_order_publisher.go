package repository

import (
	"context"
	"fmt"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
)

// producer is the subset of pkg/kafka.Producer used here.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaOrderPublisher publishes order records keyed by symbol so one symbol's
// orders stay on one partition.
type KafkaOrderPublisher struct {
	producer producer
	topic    string
}

var (
	_ domrepo.OrderPublisher = (*KafkaOrderPublisher)(nil)
	_ domrepo.OrderSink      = (*KafkaOrderPublisher)(nil)
)

func NewKafkaOrderPublisher(p producer, topic string) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{producer: p, topic: topic}
}

func (p *KafkaOrderPublisher) Publish(ctx context.Context, o *models.OrderRecord) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(o.Symbol), o); err != nil {
		return fmt.Errorf("publish order %s: %w", o.ID, err)
	}
	return nil
}

// Append implements OrderSink. The producer is synchronous, so a nil error
// means the broker acknowledged the record.
func (p *KafkaOrderPublisher) Append(ctx context.Context, o *models.OrderRecord) error {
	return p.Publish(ctx, o)
}

func (p *KafkaOrderPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
