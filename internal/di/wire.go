//go:build wireinject
// +build wireinject

package di

import (
	"ZoneWatch/pkg/config"
	"ZoneWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideSQLiteClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideOrderStorage,
		ProvideOrderPublisher,
		ProvideSnapshotStore,

		// Market data
		ProvideRateLimiter,
		ProvideYahooClient,
		ProvideCandleSource,
		ProvidePriceBook,
		ProvidePriceSource,

		// Use cases
		ProvideZoneRegistry,
		ProvideZoneAnalyzer,
		ProvideCandlesUseCase,
		ProvideCatalog,
		ProvideCatalogBuilder,
		ProvideOrderProcessor,
		ProvideKafkaOrdersHandler,
		ProvidePriceCollector,
		ProvideMonitor,

		// HTTP
		ProvideZonesHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideClosers,
		wire.Struct(new(server.Deps), "*"),
		ProvideApp,
	)
	return &server.App{}, nil
}
