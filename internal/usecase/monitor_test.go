package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ZoneWatch/internal/domain/models"
)

func monitorCatalog(levels map[string][]Level) *Catalog {
	c := NewCatalog(nil, nil)
	c.Publish(context.Background(), &CatalogSnapshot{Levels: levels})
	return c
}

func TestWithin(t *testing.T) {
	cases := []struct {
		price, level, tol float64
		want              bool
	}{
		{100, 100, 0.01, true},
		{100.99, 100, 0.01, true},
		{101, 100, 0.01, false},
		{99.5, 100, 0.01, true},
		{98, 100, 0.01, false},
		{100, 0, 0.01, false},
		{100, -5, 0.01, false},
	}
	for _, c := range cases {
		if got := Within(c.price, c.level, c.tol); got != c.want {
			t.Fatalf("Within(%v,%v,%v)=%v want %v", c.price, c.level, c.tol, got, c.want)
		}
	}
}

func TestMonitorEmitsOrders(t *testing.T) {
	cat := monitorCatalog(map[string][]Level{
		"AAPL": {
			{Symbol: "AAPL", Interval: "1d", Side: models.Buy, Price: 111},
			{Symbol: "AAPL", Interval: "1d", Side: models.Sell, Price: 150},
			{Symbol: "AAPL", Interval: "1d", Side: models.Buy, Price: 0},
		},
		"MSFT": {{Symbol: "MSFT", Interval: "1d", Side: models.Sell, Price: 98}},
	})
	prices := &fakePrices{prices: map[string]float64{"AAPL": 111.5, "MSFT": 97.5}}
	sink := &fakeSink{}
	m := newFakeMetrics()
	mon := NewMonitor(cat, prices, sink, m, nil, MonitorConfig{Tolerance: 0.01})
	fixed := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	mon.now = func() time.Time { return fixed }

	rep := mon.RunOnce(context.Background())
	if rep.Symbols != 2 || rep.Levels != 3 {
		t.Fatalf("unexpected cycle %+v", rep)
	}
	if len(sink.orders) != 2 || m.orders != 2 {
		t.Fatalf("expected 2 orders, got %d (metrics %d)", len(sink.orders), m.orders)
	}
	buy, sell := sink.orders[0], sink.orders[1]
	if buy.Symbol != "AAPL" || buy.Side != models.Buy || buy.Price != 111.5 || buy.ZonePrice != 111 {
		t.Fatalf("unexpected buy %+v", buy)
	}
	if sell.Symbol != "MSFT" || sell.Side != models.Sell || sell.ZonePrice != 98 {
		t.Fatalf("unexpected sell %+v", sell)
	}
	if buy.ID == "" || buy.ID == sell.ID || !buy.CreatedAt.Equal(fixed) {
		t.Fatalf("bad id/timestamp %+v", buy)
	}
	if m.prices["AAPL"] != 111.5 {
		t.Fatalf("last price not recorded")
	}
}

func TestMonitorRepeatsAcrossCycles(t *testing.T) {
	cat := monitorCatalog(map[string][]Level{"AAPL": {{Symbol: "AAPL", Side: models.Buy, Price: 100}}})
	sink := &fakeSink{}
	mon := NewMonitor(cat, &fakePrices{prices: map[string]float64{"AAPL": 100}}, sink, newFakeMetrics(), nil, MonitorConfig{})
	mon.RunOnce(context.Background())
	mon.RunOnce(context.Background())
	if len(sink.orders) != 2 {
		t.Fatalf("expected one order per cycle, got %d", len(sink.orders))
	}
}

func TestMonitorContinuesOnErrors(t *testing.T) {
	cat := monitorCatalog(map[string][]Level{
		"AAA": {{Symbol: "AAA", Side: models.Buy, Price: 10}},
		"BBB": {{Symbol: "BBB", Side: models.Buy, Price: 20}},
	})
	prices := &fakePrices{
		prices: map[string]float64{"BBB": 20},
		errs:   map[string]error{"AAA": errors.New("rate limited")},
	}
	m := newFakeMetrics()
	rep := NewMonitor(cat, prices, &fakeSink{}, m, nil, MonitorConfig{}).RunOnce(context.Background())
	if rep.PriceErrors != 1 || len(rep.Orders) != 1 || rep.Orders[0].Symbol != "BBB" {
		t.Fatalf("unexpected cycle %+v", rep)
	}
	if len(prices.calls) != 2 || prices.calls[0] != "AAA" {
		t.Fatalf("symbols must be visited in order, got %v", prices.calls)
	}

	failing := &fakeSink{err: errors.New("disk full")}
	rep = NewMonitor(cat, &fakePrices{prices: map[string]float64{"AAA": 10, "BBB": 20}}, failing, m, nil, MonitorConfig{}).RunOnce(context.Background())
	if rep.SinkErrors != 2 || len(rep.Orders) != 0 {
		t.Fatalf("expected both appends to fail, got %+v", rep)
	}
	if m.errors["order_sink"] != 2 || m.errors["price"] != 1 {
		t.Fatalf("unexpected error metrics %v", m.errors)
	}
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	cat := monitorCatalog(map[string][]Level{"AAPL": {{Symbol: "AAPL", Side: models.Buy, Price: 100}}})
	sink := &fakeSink{}
	mon := NewMonitor(cat, &fakePrices{prices: map[string]float64{"AAPL": 100}}, sink, newFakeMetrics(), nil, MonitorConfig{PollInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("monitor did not stop")
	}
	if len(sink.orders) != 1 {
		t.Fatalf("expected the immediate cycle to run once, got %d", len(sink.orders))
	}
}
