//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/zengarv/StockInsightAPI/pkg/config"
	"github.com/zengarv/StockInsightAPI/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Dataset
		ProvideClickHouseClient,
		ProvideSeriesSource,
		ProvideDatasetStore,

		// Cache and rate limiting
		ProvideRedisCache,
		ProvideCacheService,
		ProvideIndicatorCache,
		ProvideCounterInfra,
		ProvideTierTable,
		ProvideLimiter,
		ProvideScheduler,

		// Users and auth
		ProvideUserStore,
		ProvideJWTManager,
		ProvideHasher,

		// Use cases and HTTP
		ProvideAuthUseCase,
		ProvideIndicatorsUseCase,
		ProvideAuthMiddleware,
		ProvideRouter,

		ProvideApp,
	)
	return &server.App{}, nil
}
