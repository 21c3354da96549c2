package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ZoneWatch/internal/domain/models"
)

type fakeProducer struct {
	topic  string
	key    []byte
	value  interface{}
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaOrderPublisherKeysBySymbol(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaOrderPublisher(fp, "zonewatch.orders")
	o := models.NewOrderRecord("TSLA", models.Buy, 201, 200, "1d", time.Now())

	if err := p.Append(context.Background(), o); err != nil {
		t.Fatalf("append: %v", err)
	}
	if fp.topic != "zonewatch.orders" || string(fp.key) != "TSLA" {
		t.Fatalf("unexpected topic/key: %s %s", fp.topic, fp.key)
	}
	if got, ok := fp.value.(*models.OrderRecord); !ok || got.ID != o.ID {
		t.Fatalf("unexpected value: %#v", fp.value)
	}
	if err := p.Close(); err != nil || !fp.closed {
		t.Fatalf("close not forwarded")
	}
}

func TestKafkaOrderPublisherWrapsError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaOrderPublisher(&fakeProducer{err: boom}, "t")
	err := p.Publish(context.Background(), models.NewOrderRecord("X", models.Sell, 1, 1, "1d", time.Now()))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
