//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Logging and metrics
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,

		// Repositories (with business logic)
		ProvideTradeStorage,
		ProvideTradePublisher,
		ProvideMarketStream,
		ProvideBarStore,

		// Analytics components
		ProvideFactorCache,
		ProvideRotationTracker,
		ProvideRegimeScorer,
		ProvideRiskEngine,
		ProvideFactorPoller,

		// Use cases
		ProvideTradeProcessor,
		ProvideTradeCollector,
		ProvideAnalyticsUseCase,
		ProvideBarsUseCase,
		ProvideKafkaTicksHandler,
		ProvideKafkaFactorsHandler,

		// Transport and periodic work
		ProvideScheduler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
