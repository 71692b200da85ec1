//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/varangian-core/magical-board/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideDomainConfig,
	ProvideTracerProvider,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRepositories,
	wire.FieldsOf(new(Repositories), "Boards", "Elements", "Users"),
	ProvideImageStore,
	ProvideCollector,
	ProvideRecorder,
	ProvideEventPublisher,
	ProvideLayoutService,
	ProvideSessionManager,
	ProvideImageService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup closes
// storage and flushes traces.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
