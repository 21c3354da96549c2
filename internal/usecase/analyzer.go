package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/services/zones"
	applogger "ZoneWatch/pkg/logger"
)

// ZoneAnalyzer fetches candles and runs zone detection for one or many symbols.
type ZoneAnalyzer struct {
	source   domrepo.CandleSource
	registry *zones.Registry
	metrics  domrepo.Metrics
	log      *applogger.Logger
	workers  int
	now      func() time.Time
}

func NewZoneAnalyzer(source domrepo.CandleSource, registry *zones.Registry, metrics domrepo.Metrics, log *applogger.Logger, workers int) *ZoneAnalyzer {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &ZoneAnalyzer{source: source, registry: registry, metrics: metrics, log: log, workers: workers, now: time.Now}
}

type AnalyzeParams struct {
	Symbol   string
	Interval domrepo.Interval
	Range    domrepo.FetchRange
	Preset   string
}

// Analyze returns the zone report for one symbol. Finding no zones is not an error.
func (a *ZoneAnalyzer) Analyze(ctx context.Context, p AnalyzeParams) (*models.ZoneReport, error) {
	start := a.now()
	det, err := a.registry.Get(p.Preset)
	if err != nil {
		return nil, err
	}
	candles, err := a.source.FetchCandles(ctx, p.Symbol, p.Interval, p.Range)
	if err != nil {
		a.metrics.RecordError("fetch_candles")
		return nil, fmt.Errorf("fetch candles %s %s: %w", p.Symbol, p.Interval, err)
	}
	found, err := det.Detect(candles)
	if err != nil {
		a.metrics.RecordError("detect")
		return nil, fmt.Errorf("detect %s %s: %w", p.Symbol, p.Interval, err)
	}

	summary := models.Summarize(found)
	a.metrics.RecordZones(p.Symbol, string(p.Interval), summary)
	a.metrics.RecordLatency("analyze", a.now().Sub(start).Seconds())
	return &models.ZoneReport{
		Symbol:    p.Symbol,
		Interval:  string(p.Interval),
		Candles:   len(candles),
		Zones:     found,
		Summary:   summary,
		Generated: a.now().UTC(),
	}, nil
}

type NestedParams struct {
	Symbol         string
	LowerInterval  domrepo.Interval
	LowerRange     domrepo.FetchRange
	HigherInterval domrepo.Interval
	HigherRange    domrepo.FetchRange
	Mode           zones.NestingMode
	Preset         string
}

// AnalyzeNested detects zones on both timeframes and keeps the lower-timeframe
// zones that sit inside a higher-timeframe zone of the same direction.
func (a *ZoneAnalyzer) AnalyzeNested(ctx context.Context, p NestedParams) (*models.NestedZoneReport, error) {
	var (
		wg            sync.WaitGroup
		higher, lower *models.ZoneReport
		herr, lerr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		higher, herr = a.Analyze(ctx, AnalyzeParams{Symbol: p.Symbol, Interval: p.HigherInterval, Range: p.HigherRange, Preset: p.Preset})
	}()
	go func() {
		defer wg.Done()
		lower, lerr = a.Analyze(ctx, AnalyzeParams{Symbol: p.Symbol, Interval: p.LowerInterval, Range: p.LowerRange, Preset: p.Preset})
	}()
	wg.Wait()
	if herr != nil {
		return nil, herr
	}
	if lerr != nil {
		return nil, lerr
	}

	return &models.NestedZoneReport{
		Symbol:         p.Symbol,
		LowerInterval:  string(p.LowerInterval),
		HigherInterval: string(p.HigherInterval),
		Mode:           string(p.Mode),
		HigherZones:    higher.Zones,
		LowerZones:     lower.Zones,
		Nested:         zones.FilterNested(lower.Zones, higher.Zones, p.Mode),
	}, nil
}

// SymbolResult is one entry of a universe run. Exactly one of Report and Err is set.
type SymbolResult struct {
	Symbol string
	Report *models.ZoneReport
	Err    error
}

// AnalyzeUniverse analyzes every symbol with a bounded worker pool. Results keep
// the input order and a failing symbol does not affect the others.
func (a *ZoneAnalyzer) AnalyzeUniverse(ctx context.Context, symbols []string, interval domrepo.Interval, r domrepo.FetchRange) []SymbolResult {
	results := make([]SymbolResult, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := a.workers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sym := symbols[i]
				rep, err := a.Analyze(ctx, AnalyzeParams{Symbol: sym, Interval: interval, Range: r})
				if err != nil {
					a.log.Warn("analyze symbol failed", applogger.String("symbol", sym), applogger.Error(err))
				}
				results[i] = SymbolResult{Symbol: sym, Report: rep, Err: err}
			}
		}()
	}

feed:
	for i := range symbols {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(symbols); j++ {
				results[j] = SymbolResult{Symbol: symbols[j], Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
