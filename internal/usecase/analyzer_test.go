package usecase

import (
	"context"
	"errors"
	"testing"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/services/zones"
)

func TestAnalyzeReport(t *testing.T) {
	src := newFakeSource()
	src.candles["AAPL/1d"] = demandCandles()
	m := newFakeMetrics()
	a := newTestAnalyzer(t, src, m)

	rep, err := a.Analyze(context.Background(), AnalyzeParams{Symbol: "AAPL", Interval: domrepo.Interval1d, Range: domrepo.FetchRange{Period: "1y"}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.Candles != 4 || len(rep.Zones) != 1 || rep.Summary.Fresh != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Zones[0].Direction != models.Demand {
		t.Fatalf("expected demand, got %s", rep.Zones[0].Direction)
	}
	if m.zones["AAPL/1d"].Total != 1 {
		t.Fatalf("zones not recorded: %+v", m.zones)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	src := newFakeSource()
	bad := demandCandles()
	bad[1].High = 90
	src.candles["BAD/1d"] = bad
	a := newTestAnalyzer(t, src, newFakeMetrics())
	ctx := context.Background()

	if _, err := a.Analyze(ctx, AnalyzeParams{Symbol: "NONE", Interval: domrepo.Interval1d}); !errors.Is(err, domrepo.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	var me *models.MalformedCandleError
	if _, err := a.Analyze(ctx, AnalyzeParams{Symbol: "BAD", Interval: domrepo.Interval1d}); !errors.As(err, &me) {
		t.Fatalf("expected malformed candle, got %v", err)
	}
	if _, err := a.Analyze(ctx, AnalyzeParams{Symbol: "BAD", Interval: domrepo.Interval1d, Preset: "nope"}); !errors.Is(err, zones.ErrUnknownPreset) {
		t.Fatalf("expected unknown preset, got %v", err)
	}
}

func TestAnalyzeEmptySeries(t *testing.T) {
	src := newFakeSource()
	src.candles["FLAT/1d"] = []models.Candle{}
	rep, err := newTestAnalyzer(t, src, newFakeMetrics()).Analyze(context.Background(), AnalyzeParams{Symbol: "FLAT", Interval: domrepo.Interval1d})
	if err != nil {
		t.Fatalf("empty series must not fail: %v", err)
	}
	if rep.Zones == nil || len(rep.Zones) != 0 {
		t.Fatalf("expected empty zones, got %#v", rep.Zones)
	}
}

func TestAnalyzeNested(t *testing.T) {
	src := newFakeSource()
	// higher-timeframe demand zone 100..120 contains the daily zone 105..111
	src.candles["AAPL/1mo"] = []models.Candle{
		candle(0, 90, 120, 90, 118),
		candle(1, 118, 120, 100, 112),
		candle(2, 112, 140, 112, 138),
	}
	src.candles["AAPL/1d"] = demandCandles()
	a := newTestAnalyzer(t, src, newFakeMetrics())

	rep, err := a.AnalyzeNested(context.Background(), NestedParams{
		Symbol:         "AAPL",
		LowerInterval:  domrepo.Interval1d,
		HigherInterval: domrepo.Interval1mo,
		Mode:           zones.NestOverlap,
	})
	if err != nil {
		t.Fatalf("nested: %v", err)
	}
	if len(rep.HigherZones) != 1 || len(rep.LowerZones) != 1 {
		t.Fatalf("expected one zone per timeframe, got %d/%d", len(rep.HigherZones), len(rep.LowerZones))
	}
	if len(rep.Nested) != 1 {
		t.Fatalf("expected the daily zone to nest, got %+v", rep.Nested)
	}

	if _, err := a.AnalyzeNested(context.Background(), NestedParams{Symbol: "MISSING", LowerInterval: domrepo.Interval1d, HigherInterval: domrepo.Interval1mo}); !errors.Is(err, domrepo.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	_, err = a.AnalyzeNested(context.Background(), NestedParams{
		Symbol:         "AAPL",
		LowerInterval:  domrepo.Interval1d,
		HigherInterval: domrepo.Interval1mo,
		Preset:         "bogus",
	})
	if !errors.Is(err, zones.ErrUnknownPreset) {
		t.Fatalf("expected the preset to reach both timeframes, got %v", err)
	}
}

func TestAnalyzeUniverseIsolatesFailures(t *testing.T) {
	src := newFakeSource()
	src.candles["AAPL/1d"] = demandCandles()
	src.candles["MSFT/1d"] = supplyCandles()
	src.errs["FAIL/1d"] = errors.New("timeout")
	a := newTestAnalyzer(t, src, newFakeMetrics())

	symbols := []string{"AAPL", "FAIL", "MSFT", "NONE"}
	res := a.AnalyzeUniverse(context.Background(), symbols, domrepo.Interval1d, domrepo.FetchRange{Period: "1y"})
	if len(res) != len(symbols) {
		t.Fatalf("expected %d results, got %d", len(symbols), len(res))
	}
	for i, r := range res {
		if r.Symbol != symbols[i] {
			t.Fatalf("order not preserved: %d=%s", i, r.Symbol)
		}
	}
	if res[0].Err != nil || res[2].Err != nil {
		t.Fatalf("healthy symbols failed: %v %v", res[0].Err, res[2].Err)
	}
	if res[1].Err == nil || res[3].Err == nil {
		t.Fatalf("expected failures for FAIL and NONE")
	}
	if res[2].Report.Zones[0].Direction != models.Supply {
		t.Fatalf("expected supply zone for MSFT")
	}
}

func TestAnalyzeUniverseCancelled(t *testing.T) {
	src := newFakeSource()
	src.candles["AAPL/1d"] = demandCandles()
	a := newTestAnalyzer(t, src, newFakeMetrics())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := a.AnalyzeUniverse(ctx, []string{"AAPL", "MSFT"}, domrepo.Interval1d, domrepo.FetchRange{})
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	for _, r := range res {
		if r.Symbol == "" {
			t.Fatalf("result without symbol: %+v", r)
		}
	}
}
