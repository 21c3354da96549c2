package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ZoneWatch/internal/domain/models"
	drepo "ZoneWatch/internal/domain/repository"
)

// ErrUnknownBackend is returned for an order backend other than sqlite, clickhouse or kafka.
var ErrUnknownBackend = errors.New("unknown order backend")

// OrderProcessor is the monitor's OrderSink. It routes each record to the
// configured backend: kafka publishes, sqlite and clickhouse store directly.
type OrderProcessor struct {
	pub     drepo.OrderPublisher
	store   drepo.OrderStorage
	metrics drepo.Metrics
	backend string
}

var _ drepo.OrderSink = (*OrderProcessor)(nil)

// NewOrderProcessor checks that the backend is known and has what it needs.
func NewOrderProcessor(pub drepo.OrderPublisher, store drepo.OrderStorage, metrics drepo.Metrics, backend string) (*OrderProcessor, error) {
	switch backend {
	case "kafka":
		if pub == nil {
			return nil, fmt.Errorf("kafka backend: publisher is nil")
		}
	case "sqlite", "clickhouse":
		if store == nil {
			return nil, fmt.Errorf("%s backend: store is nil", backend)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return &OrderProcessor{pub: pub, store: store, metrics: metrics, backend: backend}, nil
}

func (p *OrderProcessor) Backend() string { return p.backend }

// Append returns once the backend has accepted the record.
func (p *OrderProcessor) Append(ctx context.Context, o *models.OrderRecord) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, o)
	default:
		err = p.store.Store(ctx, o)
	}
	if err != nil {
		p.metrics.RecordError("order_" + p.backend)
		return fmt.Errorf("append order: %w", err)
	}
	p.metrics.RecordLatency("order_append", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *OrderProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
