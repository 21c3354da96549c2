package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
)

// ErrInvalidTick is wrapped by every validation failure.
var ErrInvalidTick = errors.New("invalid tick")

// TickSink receives accepted ticks.
type TickSink interface {
	Update(ctx context.Context, t *models.Tick) error
}

// TickPipeline sits between the live stream and the price book.
// It validates, optionally transforms and throttles ticks per symbol.
type TickPipeline struct {
	sink      TickSink
	metrics   domrepo.Metrics
	maxRPS    int
	transform func(*models.Tick) *models.Tick
	now       func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max ticks per second accepted per symbol. Zero disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

// WithTransform sets a hook applied to each tick after validation, e.g. symbol mapping.
func WithTransform(fn func(*models.Tick) *models.Tick) PipelineOption {
	return func(p *TickPipeline) { p.transform = fn }
}

// NewTickPipeline creates a new pipeline.
func NewTickPipeline(sink TickSink, metrics domrepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   20,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates, throttles and forwards one tick. Throttled ticks are
// dropped without error.
func (p *TickPipeline) Process(ctx context.Context, t *models.Tick) error {
	start := p.now()
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		t = p.transform(t)
		if err := validateTick(t); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.allow(t.Symbol, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}
	if err := p.sink.Update(ctx, t); err != nil {
		p.metrics.RecordError("pipeline_sink")
		return fmt.Errorf("pipeline sink: %w", err)
	}
	p.metrics.RecordLastPrice(t.Symbol, t.Price)
	return nil
}

func validateTick(t *models.Tick) error {
	switch {
	case t == nil:
		return fmt.Errorf("%w: nil", ErrInvalidTick)
	case t.Symbol == "":
		return fmt.Errorf("%w: symbol empty", ErrInvalidTick)
	case t.Timestamp <= 0:
		return fmt.Errorf("%w: timestamp %d", ErrInvalidTick, t.Timestamp)
	case t.Price <= 0 || math.IsNaN(t.Price) || math.IsInf(t.Price, 0):
		return fmt.Errorf("%w: price %v", ErrInvalidTick, t.Price)
	case t.Volume < 0:
		return fmt.Errorf("%w: negative volume", ErrInvalidTick)
	}
	return nil
}

func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[symbol]
	if ok && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
