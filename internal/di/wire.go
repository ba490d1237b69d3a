//go:build wireinject
// +build wireinject

package di

import (
	"SalesCast/pkg/config"
	"SalesCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideRegisterer,
		ProvideMetrics,
		ProvideDashboardMetrics,

		// Infrastructure clients
		ProvideSessionCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSessionStore,
		ProvideTableSource,
		ProvideRunArchive,
		ProvideRunPublisher,

		// Services and use cases
		ProvideTrainer,
		ProvideDashboard,
		ProvideLiveTraining,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
