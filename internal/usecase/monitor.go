package usecase

import (
	"context"
	"math"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	applogger "ZoneWatch/pkg/logger"
)

type MonitorConfig struct {
	// Tolerance is the relative distance |price-level|/level under which an order is emitted.
	Tolerance    float64
	PollInterval time.Duration
}

// Monitor compares live prices against the catalog and appends an order record
// for every level within tolerance. Records are not de-duplicated across cycles.
type Monitor struct {
	catalog *Catalog
	prices  domrepo.PriceSource
	sink    domrepo.OrderSink
	metrics domrepo.Metrics
	log     *applogger.Logger
	cfg     MonitorConfig
	now     func() time.Time
}

func NewMonitor(catalog *Catalog, prices domrepo.PriceSource, sink domrepo.OrderSink, metrics domrepo.Metrics, log *applogger.Logger, cfg MonitorConfig) *Monitor {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 0.01
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &Monitor{catalog: catalog, prices: prices, sink: sink, metrics: metrics, log: log, cfg: cfg, now: time.Now}
}

// CycleReport summarizes one pass over the catalog.
type CycleReport struct {
	Symbols     int
	Levels      int
	Orders      []*models.OrderRecord
	PriceErrors int
	SinkErrors  int
	Duration    time.Duration
}

// Within reports whether price is inside the relative tolerance of level.
func Within(price, level, tolerance float64) bool {
	if level <= 0 {
		return false
	}
	return math.Abs(price-level)/level < tolerance
}

// RunOnce walks every catalog symbol in order. A failed price fetch or append
// is logged and counted; the cycle carries on.
func (m *Monitor) RunOnce(ctx context.Context) CycleReport {
	start := m.now()
	snap := m.catalog.Current()
	var rep CycleReport

	for _, sym := range snap.Symbols() {
		if ctx.Err() != nil {
			break
		}
		levels := snap.Levels[sym]
		if len(levels) == 0 {
			continue
		}
		rep.Symbols++

		price, err := m.prices.LatestPrice(ctx, sym)
		if err != nil {
			rep.PriceErrors++
			m.metrics.RecordError("price")
			m.log.Warn("latest price", applogger.String("symbol", sym), applogger.Error(err))
			continue
		}
		m.metrics.RecordLastPrice(sym, price)

		for _, lv := range levels {
			if lv.Price <= 0 {
				continue
			}
			rep.Levels++
			if !Within(price, lv.Price, m.cfg.Tolerance) {
				continue
			}
			o := models.NewOrderRecord(sym, lv.Side, price, lv.Price, lv.Interval, m.now())
			if err := m.sink.Append(ctx, o); err != nil {
				rep.SinkErrors++
				m.metrics.RecordError("order_sink")
				m.log.Error("append order",
					applogger.String("symbol", sym),
					applogger.String("side", string(lv.Side)),
					applogger.Error(err))
				continue
			}
			rep.Orders = append(rep.Orders, o)
			m.metrics.RecordOrder(sym, lv.Side)
			m.log.Info("order emitted",
				applogger.String("symbol", sym),
				applogger.String("side", string(o.Side)),
				applogger.Float64("price", price),
				applogger.Float64("zone_price", lv.Price))
		}
	}

	rep.Duration = m.now().Sub(start)
	m.metrics.RecordLatency("monitor_cycle", rep.Duration.Seconds())
	return rep
}

// Run executes a cycle immediately and then every PollInterval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("monitor started",
		applogger.Duration("poll_ms", m.cfg.PollInterval),
		applogger.Float64("tolerance", m.cfg.Tolerance))
	for {
		rep := m.RunOnce(ctx)
		m.log.Debug("monitor cycle",
			applogger.Int("symbols", rep.Symbols),
			applogger.Int("levels", rep.Levels),
			applogger.Int("orders", len(rep.Orders)),
			applogger.Int("price_errors", rep.PriceErrors),
			applogger.Int("sink_errors", rep.SinkErrors))

		t := time.NewTimer(m.cfg.PollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			m.log.Info("monitor stopped")
			return
		case <-t.C:
		}
	}
}
