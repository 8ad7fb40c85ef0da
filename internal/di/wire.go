//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/service/market"
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideCache,
		ProvideMetrics,

		// Market data
		ProvideYahooClient,
		ProvideMarketProvider,
		wire.Bind(new(repository.MarketData), new(*market.Provider)),

		// Services and repositories
		ProvidePredictor,
		ProvideChartRenderer,
		ProvideChartStore,
		ProvideLimiter,

		// Use cases
		ProvideMarketOverview,
		ProvidePrefetcher,

		// Transport and application
		ProvideOverviewHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
