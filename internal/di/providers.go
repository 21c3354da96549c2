package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/handler/api"
	mid "ZoneWatch/internal/middleware"
	internalrepo "ZoneWatch/internal/repository"
	"ZoneWatch/internal/service/cache"
	"ZoneWatch/internal/service/finnhub"
	"ZoneWatch/internal/service/marketdata"
	svcmetrics "ZoneWatch/internal/service/metrics"
	"ZoneWatch/internal/service/pricebook"
	"ZoneWatch/internal/service/ratelimit"
	"ZoneWatch/internal/services/zones"
	"ZoneWatch/internal/usecase"
	pkgch "ZoneWatch/pkg/clickhouse"
	"ZoneWatch/pkg/config"
	xhttp "ZoneWatch/pkg/http"
	pkgkafka "ZoneWatch/pkg/kafka"
	applogger "ZoneWatch/pkg/logger"
	"ZoneWatch/pkg/metrics"
	"ZoneWatch/pkg/server"
	pkgsqlite "ZoneWatch/pkg/sqlite"

	"github.com/segmentio/kafka-go"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New()
}

// ProvideCache layers an in-process cache over Redis when enabled, and uses the
// in-process TTL cache alone otherwise.
func ProvideCache(cfg *config.Config) cache.BytesCache {
	if cfg.Redis.Enabled {
		return cache.NewLayeredCache(cache.NewRedisCache(cfg.Redis), cfg.Redis.L1TTL)
	}
	return cache.NewTTLCache()
}

// ProvideClickHouseClient creates a ClickHouse client and its schema. Returns nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// orderStoreKind is orders.backend when the backend is itself a store, else orders.store.
func orderStoreKind(cfg *config.Config) string {
	if cfg.Orders.Backend != "kafka" {
		return cfg.Orders.Backend
	}
	return cfg.Orders.Store
}

// ProvideSQLiteClient opens the local order database. Returns nil unless sqlite stores orders.
func ProvideSQLiteClient(cfg *config.Config) (*pkgsqlite.Client, error) {
	if orderStoreKind(cfg) != "sqlite" {
		return nil, nil
	}
	c, err := pkgsqlite.New(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return c, nil
}

// ProvideOrderStorage creates the order store named by orders.store, or by
// orders.backend when that is a store itself.
func ProvideOrderStorage(cfg *config.Config, sq *pkgsqlite.Client, ch *pkgch.Client) (repository.OrderStorage, error) {
	var store repository.OrderStorage
	switch orderStoreKind(cfg) {
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("order store clickhouse: client disabled")
		}
		store = internalrepo.NewClickHouseOrderStore(ch, cfg.ClickHouse.Database)
	default:
		if sq == nil {
			return nil, fmt.Errorf("order store sqlite: client disabled")
		}
		store = internalrepo.NewSQLiteOrderStore(sq)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("order store init: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer. Returns nil unless orders go through kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Orders.Backend != "kafka" {
		return nil, nil
	}
	// the monitor counts an order only after the broker ack, so writes stay synchronous
	producer, err := pkgkafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideOrderPublisher wraps the producer; nil without one.
func ProvideOrderPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.OrderPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaOrderPublisher(producer, cfg.Kafka.Topic)
}

// ProvideOrderProcessor creates the monitor's order sink.
func ProvideOrderProcessor(pub repository.OrderPublisher, store repository.OrderStorage, m repository.Metrics, cfg *config.Config) (*usecase.OrderProcessor, error) {
	return usecase.NewOrderProcessor(pub, store, m, cfg.Orders.Backend)
}

// ProvideKafkaConsumer creates a Kafka consumer for the order topic. Returns nil unless orders go through kafka.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if cfg.Orders.Backend != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(cfg.Kafka, log)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.RequireKey(),
		pkgkafka.TimingHook(func(topic string, d time.Duration, err error) {
			m.RecordLatency("consume_"+topic, d.Seconds())
		}),
		pkgkafka.HookFuncs{Err: func(_ context.Context, topic string, km kafka.Message, _ []byte, err error) {
			log.Warn("order event failed",
				applogger.String("topic", topic),
				applogger.String("source", pkgkafka.Header(km, "source")),
				applogger.Error(err))
		}},
	))
	return consumer, nil
}

// ProvideKafkaOrdersHandler stores consumed order events. Returns nil without a consumer.
func ProvideKafkaOrdersHandler(consumer *pkgkafka.Consumer, store repository.OrderStorage, m repository.Metrics, cfg *config.Config) *usecase.KafkaOrdersHandler {
	if consumer == nil {
		return nil
	}
	return usecase.NewKafkaOrdersHandler(cfg.Kafka.Topic, store, m)
}

func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideYahooClient creates the historical candle and price provider.
func ProvideYahooClient(cfg *config.Config, limiter *ratelimit.Limiter, log *applogger.Logger) *marketdata.YahooClient {
	return marketdata.NewYahooClient(marketdata.YahooConfig{
		BaseURL:      cfg.MarketData.BaseURL,
		UserAgent:    cfg.MarketData.UserAgent,
		Timeout:      cfg.MarketData.Timeout,
		RateCapacity: cfg.MarketData.RateLimit.Capacity,
		RatePerSec:   cfg.MarketData.RateLimit.RefillPerSec,
		Retries:      cfg.MarketData.Retries,
		RetryBackoff: cfg.MarketData.RetryBackoff,
	}, limiter, log)
}

// ProvideCandleSource layers write-through storage and caching over Yahoo.
func ProvideCandleSource(cfg *config.Config, yahoo *marketdata.YahooClient, c cache.BytesCache, ch *pkgch.Client, log *applogger.Logger) repository.CandleSource {
	var src repository.CandleSource = yahoo
	if cfg.MarketData.StoreCandles && ch != nil {
		store := internalrepo.NewCHCandleStore(ch, cfg.ClickHouse.Database)
		store.SetLogger(log)
		src = marketdata.NewStoringSource(src, store, log)
	}
	if cfg.MarketData.CacheTTL > 0 {
		src = marketdata.NewCachedSource(src, c, cfg.MarketData.CacheTTL, log)
	}
	return src
}

func ProvideZoneRegistry(cfg *config.Config) (*zones.Registry, error) {
	t, err := cfg.ZoneThresholds()
	if err != nil {
		return nil, err
	}
	return zones.NewRegistry(t)
}

func ProvideZoneAnalyzer(src repository.CandleSource, reg *zones.Registry, m repository.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.ZoneAnalyzer {
	return usecase.NewZoneAnalyzer(src, reg, m, log, cfg.Monitor.Workers)
}

func ProvideCandlesUseCase(src repository.CandleSource) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(src)
}

func ProvideSnapshotStore(c cache.BytesCache) repository.SnapshotStore {
	return internalrepo.NewCacheSnapshotStore(c)
}

func ProvideCatalog(store repository.SnapshotStore, log *applogger.Logger) *usecase.Catalog {
	return usecase.NewCatalog(store, log)
}

func ProvideCatalogBuilder(a *usecase.ZoneAnalyzer, cat *usecase.Catalog, cfg *config.Config, log *applogger.Logger) *usecase.CatalogBuilder {
	return usecase.NewCatalogBuilder(a, cat, usecase.CatalogBuilderConfig{
		Symbols:       cfg.Monitor.Symbols,
		Interval:      repository.Interval(cfg.Monitor.Interval),
		Range:         repository.FetchRange{Period: cfg.Monitor.Period},
		IncludeBroken: cfg.Monitor.IncludeBroken,
	}, log)
}

func ProvidePriceBook(cfg *config.Config) *pricebook.Book {
	return pricebook.New(cfg.Finnhub.MaxPriceAge)
}

// ProvidePriceCollector streams Finnhub trades into the book. Returns nil unless
// the price source is finnhub.
func ProvidePriceCollector(cfg *config.Config, book *pricebook.Book, m repository.Metrics, log *applogger.Logger) *usecase.PriceCollector {
	if cfg.Monitor.PriceSource != "finnhub" {
		return nil
	}
	stream := finnhub.New(finnhub.Config{
		APIKey:         cfg.Finnhub.APIKey,
		WebSocketURL:   cfg.Finnhub.WebSocketURL,
		Symbols:        cfg.Monitor.Symbols,
		ReconnectDelay: cfg.Finnhub.ReconnectDelay,
		PingInterval:   cfg.Finnhub.PingInterval,
	}, log)
	pipe := mid.NewTickPipeline(book, m, mid.WithMaxRPS(20))
	return usecase.NewPriceCollector(stream, pipe, m, log)
}

// ProvidePriceSource prefers streamed prices and falls back to Yahoo.
func ProvidePriceSource(cfg *config.Config, book *pricebook.Book, yahoo *marketdata.YahooClient) repository.PriceSource {
	if cfg.Monitor.PriceSource == "finnhub" {
		return pricebook.Fallback{Primary: book, Secondary: yahoo}
	}
	return yahoo
}

func ProvideMonitor(cat *usecase.Catalog, prices repository.PriceSource, proc *usecase.OrderProcessor, m repository.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.Monitor {
	return usecase.NewMonitor(cat, prices, proc, m, log, usecase.MonitorConfig{
		Tolerance:    cfg.Monitor.ProximityTolerance,
		PollInterval: cfg.Monitor.PollInterval,
	})
}

// ProvideZonesHandler builds the HTTP API and its health checks.
func ProvideZonesHandler(
	log *applogger.Logger,
	a *usecase.ZoneAnalyzer,
	cu *usecase.CandlesUseCase,
	cat *usecase.Catalog,
	b *usecase.CatalogBuilder,
	store repository.OrderStorage,
	c cache.BytesCache,
	ch *pkgch.Client,
	collector *usecase.PriceCollector,
) *api.ZonesEchoHandler {
	h := api.NewZonesEchoHandler(log, a, cu, cat, b, store)
	h.AddHealthCheck("orders", store.Health)
	if ch != nil {
		h.AddHealthCheck("clickhouse", ch.Health)
	}
	if lc, ok := c.(*cache.LayeredCache); ok {
		h.AddHealthCheck("redis", lc.Ping)
	}
	if collector != nil {
		h.AddHealthCheck("price_stream", func(context.Context) error {
			if !collector.IsConnected() {
				return finnhub.ErrNotConnected
			}
			return nil
		})
	}
	return h
}

// ProvideClosers lists the clients closed at shutdown.
func ProvideClosers(sq *pkgsqlite.Client, ch *pkgch.Client, c cache.BytesCache) []io.Closer {
	var out []io.Closer
	if lc, ok := c.(*cache.LayeredCache); ok {
		out = append(out, lc)
	}
	if ch != nil {
		out = append(out, ch)
	}
	if sq != nil {
		out = append(out, sq)
	}
	return out
}

func ProvideHTTPHandler(h *api.ZonesEchoHandler) xhttp.Handler {
	return h
}

// ProvideApp creates the application server.
func ProvideApp(d server.Deps) *server.App {
	return server.New(d)
}
