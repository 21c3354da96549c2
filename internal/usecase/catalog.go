package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	applogger "ZoneWatch/pkg/logger"
)

// Level is one price the monitor watches.
type Level struct {
	Symbol     string           `json:"symbol"`
	Interval   string           `json:"interval"`
	Direction  models.Direction `json:"direction"`
	Side       models.Side      `json:"side"`
	Price      float64          `json:"price"`
	LowerBound float64          `json:"lower_bound"`
	UpperBound float64          `json:"upper_bound"`
	Outcome    models.Outcome   `json:"outcome"`
	ZoneStart  time.Time        `json:"zone_start"`
	ZoneEnd    time.Time        `json:"zone_end"`
}

// CatalogSnapshot maps symbol to its levels. It is never mutated once published.
type CatalogSnapshot struct {
	Levels  map[string][]Level `json:"levels"`
	BuiltAt time.Time          `json:"built_at"`
}

func emptySnapshot() *CatalogSnapshot {
	return &CatalogSnapshot{Levels: map[string][]Level{}}
}

// LevelsFromReport turns a zone report into monitor levels. Broken zones are
// dropped unless includeBroken is set.
func LevelsFromReport(rep *models.ZoneReport, includeBroken bool) []Level {
	out := make([]Level, 0, len(rep.Zones))
	for _, z := range rep.Zones {
		if z.Outcome == models.OutcomeBroken && !includeBroken {
			continue
		}
		out = append(out, Level{
			Symbol:     rep.Symbol,
			Interval:   rep.Interval,
			Direction:  z.Direction,
			Side:       models.SideFor(z.Direction),
			Price:      z.ProximalPrice(),
			LowerBound: z.LowerBound,
			UpperBound: z.UpperBound,
			Outcome:    z.Outcome,
			ZoneStart:  z.StartTime,
			ZoneEnd:    z.EndTime,
		})
	}
	return out
}

// BuildSnapshot assembles a snapshot from a universe run. Symbols that failed keep
// their levels from prev, when prev has any.
func BuildSnapshot(results []SymbolResult, prev *CatalogSnapshot, includeBroken bool, at time.Time) *CatalogSnapshot {
	snap := &CatalogSnapshot{Levels: make(map[string][]Level, len(results)), BuiltAt: at.UTC()}
	for _, r := range results {
		if r.Err != nil {
			if prev != nil {
				if lv, ok := prev.Levels[r.Symbol]; ok {
					snap.Levels[r.Symbol] = lv
				}
			}
			continue
		}
		snap.Levels[r.Symbol] = LevelsFromReport(r.Report, includeBroken)
	}
	return snap
}

// Symbols returns the catalog symbols in sorted order.
func (s *CatalogSnapshot) Symbols() []string {
	out := make([]string, 0, len(s.Levels))
	for sym := range s.Levels {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of levels across all symbols.
func (s *CatalogSnapshot) Count() int {
	n := 0
	for _, lv := range s.Levels {
		n += len(lv)
	}
	return n
}

// Latest keeps the most recent demand level and the most recent supply level
// of each symbol, demand first. On equal end times the later level wins.
func (s *CatalogSnapshot) Latest() *CatalogSnapshot {
	out := &CatalogSnapshot{Levels: make(map[string][]Level, len(s.Levels)), BuiltAt: s.BuiltAt}
	for sym, lv := range s.Levels {
		var demand, supply *Level
		for i := range lv {
			l := &lv[i]
			pick := &demand
			if l.Direction == models.Supply {
				pick = &supply
			}
			if *pick == nil || !l.ZoneEnd.Before((*pick).ZoneEnd) {
				*pick = l
			}
		}
		var kept []Level
		for _, l := range []*Level{demand, supply} {
			if l != nil {
				kept = append(kept, *l)
			}
		}
		if len(kept) > 0 {
			out.Levels[sym] = kept
		}
	}
	return out
}

// Catalog holds the current snapshot. Readers always see a whole snapshot.
type Catalog struct {
	cur   atomic.Pointer[CatalogSnapshot]
	store domrepo.SnapshotStore
	log   *applogger.Logger
}

// NewCatalog creates an empty catalog. store may be nil.
func NewCatalog(store domrepo.SnapshotStore, log *applogger.Logger) *Catalog {
	if log == nil {
		log = applogger.Nop()
	}
	c := &Catalog{store: store, log: log}
	c.cur.Store(emptySnapshot())
	return c
}

// Current returns the published snapshot; never nil.
func (c *Catalog) Current() *CatalogSnapshot {
	return c.cur.Load()
}

// Publish swaps in snap and persists it. A failed save is logged only.
func (c *Catalog) Publish(ctx context.Context, snap *CatalogSnapshot) {
	if snap == nil {
		snap = emptySnapshot()
	}
	c.cur.Store(snap)
	if c.store == nil {
		return
	}
	b, err := json.Marshal(snap)
	if err == nil {
		err = c.store.Save(ctx, b)
	}
	if err != nil {
		c.log.Warn("persist catalog snapshot", applogger.Error(err))
	}
}

// Restore loads the persisted snapshot, if any, and publishes it without saving.
func (c *Catalog) Restore(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	b, ok, err := c.store.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	var snap CatalogSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return false, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	if snap.Levels == nil {
		snap.Levels = map[string][]Level{}
	}
	c.cur.Store(&snap)
	return true, nil
}

// CatalogBuilder rebuilds the catalog from fresh analysis.
type CatalogBuilder struct {
	analyzer      *ZoneAnalyzer
	catalog       *Catalog
	symbols       []string
	interval      domrepo.Interval
	rng           domrepo.FetchRange
	includeBroken bool
	log           *applogger.Logger
	now           func() time.Time
}

type CatalogBuilderConfig struct {
	Symbols       []string
	Interval      domrepo.Interval
	Range         domrepo.FetchRange
	IncludeBroken bool
}

func NewCatalogBuilder(analyzer *ZoneAnalyzer, catalog *Catalog, cfg CatalogBuilderConfig, log *applogger.Logger) *CatalogBuilder {
	if log == nil {
		log = applogger.Nop()
	}
	return &CatalogBuilder{
		analyzer:      analyzer,
		catalog:       catalog,
		symbols:       cfg.Symbols,
		interval:      cfg.Interval,
		rng:           cfg.Range,
		includeBroken: cfg.IncludeBroken,
		log:           log,
		now:           time.Now,
	}
}

// RefreshReport summarizes one rebuild.
type RefreshReport struct {
	Symbols  int               `json:"symbols"`
	Levels   int               `json:"levels"`
	Failed   map[string]string `json:"failed,omitempty"`
	BuiltAt  time.Time         `json:"built_at"`
	Duration time.Duration     `json:"duration_ns"`
}

// Refresh analyzes all symbols and publishes the new snapshot.
func (b *CatalogBuilder) Refresh(ctx context.Context) RefreshReport {
	start := b.now()
	results := b.analyzer.AnalyzeUniverse(ctx, b.symbols, b.interval, b.rng)
	snap := BuildSnapshot(results, b.catalog.Current(), b.includeBroken, b.now())
	b.catalog.Publish(ctx, snap)

	rep := RefreshReport{Symbols: len(b.symbols), Levels: snap.Count(), BuiltAt: snap.BuiltAt}
	for _, r := range results {
		if r.Err != nil {
			if rep.Failed == nil {
				rep.Failed = map[string]string{}
			}
			rep.Failed[r.Symbol] = r.Err.Error()
		}
	}
	rep.Duration = b.now().Sub(start)
	b.log.Info("catalog refreshed",
		applogger.Int("symbols", rep.Symbols),
		applogger.Int("levels", rep.Levels),
		applogger.Int("failed", len(rep.Failed)),
		applogger.Duration("duration_ms", rep.Duration))
	return rep
}

// Run refreshes every interval until ctx is done. every <= 0 disables the loop.
func (b *CatalogBuilder) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.Refresh(ctx)
		}
	}
}
