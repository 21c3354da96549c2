package server

import (
	"context"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ZoneWatch/internal/usecase"
	"ZoneWatch/pkg/config"
	xhttp "ZoneWatch/pkg/http"
	pkgkafka "ZoneWatch/pkg/kafka"
	applogger "ZoneWatch/pkg/logger"
)

// Deps are the components the application runs. Collector, Consumer and
// OrdersHandler are nil when their feature is disabled.
type Deps struct {
	Config        *config.Config
	Logger        *applogger.Logger
	Catalog       *usecase.Catalog
	Builder       *usecase.CatalogBuilder
	Monitor       *usecase.Monitor
	Processor     *usecase.OrderProcessor
	Collector     *usecase.PriceCollector
	Consumer      *pkgkafka.Consumer
	OrdersHandler *usecase.KafkaOrdersHandler
	Handler       xhttp.Handler
	Closers       []io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	Deps
	log        *applogger.Logger
	httpServer *xhttp.Server
	wg         sync.WaitGroup
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	log := d.Logger
	if log == nil {
		log = applogger.Nop()
	}
	return &App{Deps: d, log: log}
}

// Run starts every component and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with a caller-controlled lifetime.
func (a *App) RunContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cfg := a.Config

	a.loadCatalog(ctx)
	a.goRun(func() { a.Builder.Run(ctx, cfg.Monitor.RefreshInterval) })

	if a.Collector != nil {
		if err := a.Collector.Start(ctx); err != nil {
			// the monitor still falls back to polled prices
			a.log.Error("price stream start", applogger.Error(err))
		} else {
			a.log.Info("price stream started", applogger.Strings("symbols", cfg.Monitor.Symbols))
		}
	}

	if a.Consumer != nil && a.OrdersHandler != nil {
		a.Consumer.RegisterHandler(a.OrdersHandler)
		if err := a.Consumer.Start(); err != nil {
			a.log.Error("kafka consumer start", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.OrdersHandler.Topic()))
	}

	if cfg.Monitor.Enabled {
		a.goRun(func() { a.Monitor.Run(ctx) })
	}

	srv := cfg.Server
	if cfg.Metrics.Enabled {
		srv.MetricsPath = cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.Handler, srv, a.log)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.httpServer = nil
		cancel()
		_ = a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// loadCatalog restores the persisted catalog. Without one, the first build runs
// synchronously so the monitor starts with levels.
func (a *App) loadCatalog(ctx context.Context) {
	restored, err := a.Catalog.Restore(ctx)
	if err != nil {
		a.log.Warn("catalog restore", applogger.Error(err))
	}
	if restored {
		snap := a.Catalog.Current()
		a.log.Info("catalog restored",
			applogger.Int("symbols", len(snap.Levels)),
			applogger.Int("levels", snap.Count()))
		a.goRun(func() { a.Builder.Refresh(ctx) })
		return
	}
	a.Builder.Refresh(ctx)
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// shutdown gracefully stops all services. The run context must already be cancelled.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	a.log.Info("shutting down...")

	if a.Collector != nil {
		if err := a.Collector.Shutdown(ctx); err != nil {
			a.log.Warn("price stream stop error", applogger.Error(err))
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.Consumer != nil {
		if err := a.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		a.log.Warn("background tasks did not stop in time")
	}

	if a.Processor != nil {
		a.Processor.Close()
	}
	for _, c := range a.Closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
