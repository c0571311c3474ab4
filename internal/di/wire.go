//go:build wireinject
// +build wireinject

package di

import (
	"CrediTech/pkg/config"
	"CrediTech/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application plus a
// cleanup that closes every pool the providers opened.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideRand,

		// Infrastructure
		ProvideSeriesCache,
		ProvideSeriesSource,
		ProvideHistoryArchive,
		ProvideEventPublisher,

		// Analytics engines
		ProvideHistoryStore,
		ProvideGenerator,
		ProvideLoader,
		ProvideRegistry,
		ProvideForecaster,
		ProvideClusterer,
		ProvideClassifier,
		ProvideScorer,
		ProvideComparator,

		// Use cases
		ProvidePipeline,
		ProvideProfileAnalysis,

		// Transport
		ProvideLimiter,
		ProvideAnalyticsHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,
		ProvideRefreshHandler,

		ProvideApp,
	)
	return nil, nil, nil
}
