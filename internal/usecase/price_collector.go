package usecase

import (
	"context"
	"sync"

	"ZoneWatch/internal/domain/models"
	drepo "ZoneWatch/internal/domain/repository"
	mid "ZoneWatch/internal/middleware"
	applogger "ZoneWatch/pkg/logger"
)

// PriceCollector feeds live ticks from a market stream through the tick
// pipeline into the price book.
type PriceCollector struct {
	stream  drepo.MarketStream
	pipe    *mid.TickPipeline
	metrics drepo.Metrics
	log     *applogger.Logger

	wg sync.WaitGroup
}

func NewPriceCollector(stream drepo.MarketStream, pipe *mid.TickPipeline, metrics drepo.Metrics, log *applogger.Logger) *PriceCollector {
	if log == nil {
		log = applogger.Nop()
	}
	return &PriceCollector{stream: stream, pipe: pipe, metrics: metrics, log: log}
}

// IsConnected returns true if the market stream is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes and consumes in the background until ctx is done.
func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consume(ctx)
	}()
	return nil
}

func (c *PriceCollector) consume(ctx context.Context) {
	for ctx.Err() == nil {
		ticks, errs := c.stream.Read(ctx)
		c.drain(ctx, ticks, errs)
		if ctx.Err() != nil {
			return
		}
		// the read loop ended on a stream error; keep retrying until ctx ends
		for ctx.Err() == nil {
			if err := c.stream.Reconnect(ctx); err != nil {
				c.metrics.RecordError("stream_reconnect")
				c.log.Warn("stream reconnect", applogger.Error(err))
				continue
			}
			break
		}
	}
}

func (c *PriceCollector) drain(ctx context.Context, ticks <-chan *models.Tick, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			c.metrics.RecordError("stream")
			c.log.Warn("stream read", applogger.Error(err))
		case t, ok := <-ticks:
			if !ok {
				return
			}
			if err := c.pipe.Process(ctx, t); err != nil {
				c.log.Debug("tick rejected", applogger.Error(err))
			}
		}
	}
}

// Shutdown closes the stream and waits for the consumer to exit. Cancel the
// context given to Start first, otherwise the consumer reconnects.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	err := c.stream.Close()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
