package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	pkgkafka "ZoneWatch/pkg/kafka"
)

// KafkaOrdersHandler consumes order events and writes them to the order store.
type KafkaOrdersHandler struct {
	topic   string
	storage domrepo.OrderStorage
	metrics domrepo.Metrics
}

func NewKafkaOrdersHandler(topic string, storage domrepo.OrderStorage, metrics domrepo.Metrics) *KafkaOrdersHandler {
	return &KafkaOrdersHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaOrdersHandler) Topic() string { return h.topic }

// Handle decodes one OrderRecord JSON payload and stores it.
func (h *KafkaOrdersHandler) Handle(ctx context.Context, b []byte) error {
	var o models.OrderRecord
	if err := json.Unmarshal(b, &o); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode order: %w", err)
	}
	if o.ID == "" || o.Symbol == "" || (o.Side != models.Buy && o.Side != models.Sell) {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("invalid order event id=%q symbol=%q side=%q", o.ID, o.Symbol, o.Side)
	}
	if !o.CreatedAt.IsZero() {
		h.metrics.RecordLatency("order_e2e", time.Since(o.CreatedAt).Seconds())
	}

	start := time.Now()
	err := h.storage.Store(ctx, &o)
	h.metrics.RecordLatency("order_store", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaOrdersHandler)(nil)
