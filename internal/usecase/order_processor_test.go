package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ZoneWatch/internal/domain/models"
)

func TestNewOrderProcessorValidatesBackend(t *testing.T) {
	m := newFakeMetrics()
	if _, err := NewOrderProcessor(nil, &fakeOrderStore{}, m, "csv"); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if _, err := NewOrderProcessor(nil, &fakeOrderStore{}, m, "kafka"); err == nil {
		t.Fatalf("kafka without publisher must fail")
	}
	if _, err := NewOrderProcessor(&fakePublisher{}, nil, m, "sqlite"); err == nil {
		t.Fatalf("sqlite without store must fail")
	}
	p, err := NewOrderProcessor(nil, &fakeOrderStore{}, m, "clickhouse")
	if err != nil || p.Backend() != "clickhouse" {
		t.Fatalf("clickhouse: %v", err)
	}
}

func TestOrderProcessorRoutes(t *testing.T) {
	o := models.NewOrderRecord("AAPL", models.Buy, 111.5, 111, "1d", time.Now())
	ctx := context.Background()

	store := &fakeOrderStore{}
	p, _ := NewOrderProcessor(nil, store, newFakeMetrics(), "sqlite")
	if err := p.Append(ctx, o); err != nil || len(store.stored) != 1 {
		t.Fatalf("sqlite append: %v (%d)", err, len(store.stored))
	}

	pub := &fakePublisher{}
	kstore := &fakeOrderStore{}
	p, _ = NewOrderProcessor(pub, kstore, newFakeMetrics(), "kafka")
	if err := p.Append(ctx, o); err != nil || len(pub.published) != 1 || len(kstore.stored) != 0 {
		t.Fatalf("kafka append: %v pub=%d store=%d", err, len(pub.published), len(kstore.stored))
	}

	if err := p.Append(ctx, nil); err == nil {
		t.Fatalf("nil order must fail")
	}
}

func TestOrderProcessorAppendError(t *testing.T) {
	m := newFakeMetrics()
	cause := errors.New("broker down")
	p, _ := NewOrderProcessor(&fakePublisher{err: cause}, nil, m, "kafka")
	err := p.Append(context.Background(), models.NewOrderRecord("AAPL", models.Sell, 1, 1, "1d", time.Now()))
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if m.errors["order_kafka"] != 1 {
		t.Fatalf("error metric not recorded: %v", m.errors)
	}
}

func TestOrderProcessorClose(t *testing.T) {
	store := &fakeOrderStore{}
	p, _ := NewOrderProcessor(nil, store, newFakeMetrics(), "sqlite")
	p.Close()
	if !store.closed {
		t.Fatalf("store not closed")
	}
}
