package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/services/zones"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func candle(i int, o, h, l, c float64) models.Candle {
	return models.Candle{Time: day0.AddDate(0, 0, i), Open: o, High: h, Low: l, Close: c}
}

// demandCandles holds one demand zone with base 105..111.
func demandCandles() []models.Candle {
	return []models.Candle{
		candle(0, 100, 110, 100, 108),
		candle(1, 108, 110, 105, 109),
		candle(2, 109, 111, 106, 108),
		candle(3, 110, 118, 110, 116),
	}
}

// supplyCandles holds one supply zone with base 98..104.
func supplyCandles() []models.Candle {
	return []models.Candle{
		candle(0, 110, 110, 100, 102),
		candle(1, 102, 104, 99, 101),
		candle(2, 101, 103, 98, 102),
		candle(3, 97, 97, 89, 91),
	}
}

type fakeSource struct {
	mu      sync.Mutex
	candles map[string][]models.Candle
	errs    map[string]error
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{candles: map[string][]models.Candle{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeSource) FetchCandles(_ context.Context, symbol string, interval domrepo.Interval, _ domrepo.FetchRange) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := symbol + "/" + string(interval)
	f.calls[key]++
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if cs, ok := f.candles[key]; ok {
		return cs, nil
	}
	return nil, domrepo.ErrNoData
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
	orders int
	zones  map[string]models.OutcomeSummary
	prices map[string]float64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, zones: map[string]models.OutcomeSummary{}, prices: map[string]float64{}}
}

func (m *fakeMetrics) RecordZones(symbol, interval string, s models.OutcomeSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[symbol+"/"+interval] = s
}

func (m *fakeMetrics) RecordOrder(string, models.Side) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLastPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakePrices struct {
	prices map[string]float64
	errs   map[string]error
	calls  []string
}

func (f *fakePrices) LatestPrice(_ context.Context, symbol string) (float64, error) {
	f.calls = append(f.calls, symbol)
	if err := f.errs[symbol]; err != nil {
		return 0, err
	}
	p, ok := f.prices[symbol]
	if !ok {
		return 0, errors.New("no price")
	}
	return p, nil
}

type fakeSink struct {
	orders []*models.OrderRecord
	err    error
}

func (s *fakeSink) Append(_ context.Context, o *models.OrderRecord) error {
	if s.err != nil {
		return s.err
	}
	s.orders = append(s.orders, o)
	return nil
}

type fakeOrderStore struct {
	stored []*models.OrderRecord
	err    error
	closed bool
}

func (s *fakeOrderStore) Init(context.Context) error { return nil }
func (s *fakeOrderStore) Store(_ context.Context, o *models.OrderRecord) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, o)
	return nil
}
func (s *fakeOrderStore) Query(context.Context, string, int) ([]*models.OrderRecord, error) {
	return s.stored, nil
}
func (s *fakeOrderStore) Health(context.Context) error { return nil }
func (s *fakeOrderStore) Close() error {
	s.closed = true
	return nil
}

type fakePublisher struct {
	published []*models.OrderRecord
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, o *models.OrderRecord) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, o)
	return nil
}
func (p *fakePublisher) Close() error { return nil }

type memSnapshots struct {
	data []byte
	ok   bool
}

func (m *memSnapshots) Save(_ context.Context, b []byte) error {
	m.data, m.ok = b, true
	return nil
}

func (m *memSnapshots) Load(context.Context) ([]byte, bool, error) { return m.data, m.ok, nil }

func newTestAnalyzer(t *testing.T, src domrepo.CandleSource, m domrepo.Metrics) *ZoneAnalyzer {
	t.Helper()
	reg, err := zones.NewRegistry(zones.DefaultThresholds())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return NewZoneAnalyzer(src, reg, m, nil, 3)
}
