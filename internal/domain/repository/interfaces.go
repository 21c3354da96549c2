package repository

import (
	"context"
	"errors"
	"time"

	"ZoneWatch/internal/domain/models"
)

// ErrNoData is returned by candle sources that know nothing about the symbol or range.
var ErrNoData = errors.New("no market data")

// CandleSource returns candles in chronological order. An empty slice is a valid answer.
type CandleSource interface {
	FetchCandles(ctx context.Context, symbol string, interval Interval, r FetchRange) ([]models.Candle, error)
}

// PriceSource returns the latest traded price for a symbol.
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

// MarketStream is a live trade feed (e.g. Finnhub WebSocket).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// OrderSink is the append-only order record sink used by the monitor.
// Append must only return nil once the record is durable.
type OrderSink interface {
	Append(ctx context.Context, o *models.OrderRecord) error
}

// OrderPublisher pushes order records to a message bus.
type OrderPublisher interface {
	Publish(ctx context.Context, o *models.OrderRecord) error
	Close() error
}

// OrderStorage persists order records and reads them back for the API.
type OrderStorage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, o *models.OrderRecord) error
	Query(ctx context.Context, symbol string, limit int) ([]*models.OrderRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// SnapshotStore persists the serialized monitor catalog between restarts.
type SnapshotStore interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, bool, error)
}

type Metrics interface {
	RecordZones(symbol, interval string, summary models.OutcomeSummary)
	RecordOrder(symbol string, side models.Side)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}

// FetchRange selects candles either by a provider period ("1y") or by explicit bounds.
type FetchRange struct {
	Period string
	From   time.Time
	To     time.Time
}

// IsExplicit reports whether From/To bounds are set.
func (r FetchRange) IsExplicit() bool { return !r.From.IsZero() && !r.To.IsZero() }
