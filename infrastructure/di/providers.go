package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/varangian-core/magical-board/application/commands/bus"
	commandhandlers "github.com/varangian-core/magical-board/application/commands/handlers"
	"github.com/varangian-core/magical-board/application/ports"
	querybus "github.com/varangian-core/magical-board/application/queries/bus"
	queryhandlers "github.com/varangian-core/magical-board/application/queries/handlers"
	"github.com/varangian-core/magical-board/application/services"
	"github.com/varangian-core/magical-board/application/sessions"
	domainconfig "github.com/varangian-core/magical-board/domain/config"
	domainservices "github.com/varangian-core/magical-board/domain/services"
	"github.com/varangian-core/magical-board/infrastructure/config"
	"github.com/varangian-core/magical-board/infrastructure/imagestore"
	"github.com/varangian-core/magical-board/infrastructure/messaging"
	"github.com/varangian-core/magical-board/infrastructure/messaging/eventbridge"
	"github.com/varangian-core/magical-board/infrastructure/persistence/decorators"
	"github.com/varangian-core/magical-board/infrastructure/persistence/dynamodb"
	"github.com/varangian-core/magical-board/infrastructure/persistence/memory"
	"github.com/varangian-core/magical-board/infrastructure/persistence/sqlite"
	"github.com/varangian-core/magical-board/interfaces/http/rest"
	"github.com/varangian-core/magical-board/pkg/observability"
)

const tracerShutdownTimeout = 5 * time.Second

// ProvideLogLevel creates the runtime-adjustable log level
func ProvideLogLevel(cfg *config.Config) zap.AtomicLevel {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(level)
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideDomainConfig exposes the board and timeline rules
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	if cfg.Domain == nil {
		return domainconfig.DefaultDomainConfig()
	}
	return cfg.Domain
}

// ProvideTracerProvider initializes tracing. The cleanup flushes spans.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: "magical-board",
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig creates AWS configuration. Lambda deployments with
// tracing on get X-Ray subsegments for every SDK call.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.IsLambda && cfg.EnableTracing {
		observability.InstrumentAWS(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// Repositories groups the persistence ports of the selected driver
type Repositories struct {
	Boards   ports.BoardRepository
	Elements ports.ElementRepository
	Users    ports.UserRepository
}

// ProvideRepositories opens the configured storage driver and decorates
// it with circuit breakers and tracing
func ProvideRepositories(
	cfg *config.Config,
	client *awsdynamodb.Client,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) (Repositories, func(), error) {
	var (
		repos   Repositories
		cleanup = func() {}
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		repos = Repositories{
			Boards:   memory.NewBoardRepository(),
			Elements: memory.NewElementRepository(),
			Users:    memory.NewUserRepository(),
		}
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return Repositories{}, nil, err
		}
		repos = Repositories{
			Boards:   sqlite.NewBoardRepository(db, logger),
			Elements: sqlite.NewElementRepository(db, logger),
			Users:    sqlite.NewUserRepository(db, logger),
		}
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
	case config.StorageDynamoDB:
		table := dynamodb.TableConfig{
			TableName: cfg.DynamoDBTable,
			GSI1Name:  cfg.GSI1IndexName,
			GSI2Name:  cfg.GSI2IndexName,
		}
		repos = Repositories{
			Boards:   dynamodb.NewBoardRepository(client, table, logger),
			Elements: dynamodb.NewElementRepository(client, table, logger),
			Users:    dynamodb.NewUserRepository(client, table, logger),
		}
	default:
		return Repositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.EnableCircuitBreaker && cfg.StorageDriver != config.StorageMemory {
		repos = Repositories{
			Boards:   decorators.NewBreakerBoardRepository(repos.Boards, decorators.NewCircuitBreaker(decorators.DefaultCircuitBreakerConfig("boards"), logger)),
			Elements: decorators.NewBreakerElementRepository(repos.Elements, decorators.NewCircuitBreaker(decorators.DefaultCircuitBreakerConfig("elements"), logger)),
			Users:    decorators.NewBreakerUserRepository(repos.Users, decorators.NewCircuitBreaker(decorators.DefaultCircuitBreakerConfig("users"), logger)),
		}
	}
	if cfg.EnableTracing {
		tracer := tp.Tracer()
		repos = Repositories{
			Boards:   decorators.TraceBoardRepository(repos.Boards, tracer),
			Elements: decorators.TraceElementRepository(repos.Elements, tracer),
			Users:    decorators.TraceUserRepository(repos.Users, tracer),
		}
	}

	logger.Info("Storage ready",
		zap.String("driver", cfg.StorageDriver),
		zap.Bool("circuit_breaker", cfg.EnableCircuitBreaker),
		zap.Bool("tracing", cfg.EnableTracing),
	)
	return repos, cleanup, nil
}

// ProvideImageStore creates the quota-limited image store
func ProvideImageStore(domain *domainconfig.DomainConfig, logger *zap.Logger) ports.ImageStore {
	return imagestore.NewMemoryStore(domain.MaxImageStorageBytes, logger)
}

// ProvideCollector creates the Prometheus collector, or nil when metrics
// are off
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("magical_board")
}

// ProvideRecorder combines the timing sinks for the buses. CloudWatch is
// used only inside Lambda.
func ProvideRecorder(
	cfg *config.Config,
	collector *observability.Collector,
	client *awscloudwatch.Client,
	logger *zap.Logger,
) observability.Recorder {
	recorders := observability.MultiRecorder{}
	if collector != nil {
		recorders = append(recorders, collector)
	}
	if cfg.IsLambda && cfg.EnableMetrics {
		recorders = append(recorders, observability.NewCloudWatchMetrics("MagicalBoard/"+cfg.Environment, client, logger))
	}
	return recorders
}

// ProvideEventPublisher sends events to EventBridge when a bus is
// configured and logs them otherwise. The collector observes every event.
func ProvideEventPublisher(
	cfg *config.Config,
	client *awseventbridge.Client,
	collector *observability.Collector,
	logger *zap.Logger,
) ports.EventPublisher {
	var primary ports.EventPublisher = messaging.NewLogPublisher(logger)
	if cfg.EventBusName != "" {
		primary = eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger)
	}
	if collector == nil {
		return primary
	}
	return messaging.NewFanoutPublisher(primary, logger, collector)
}

// ProvideLayoutService creates the timeline layout engine
func ProvideLayoutService(domain *domainconfig.DomainConfig) *domainservices.TimelineLayoutService {
	return domainservices.NewTimelineLayoutService(domain)
}

// ProvideSessionManager creates the board session manager
func ProvideSessionManager(
	boards ports.BoardRepository,
	elements ports.ElementRepository,
	publisher ports.EventPublisher,
	layout *domainservices.TimelineLayoutService,
	domain *domainconfig.DomainConfig,
	logger *zap.Logger,
) *sessions.Manager {
	return sessions.NewManager(boards, elements, publisher, layout, domain, logger)
}

// ProvideImageService creates the image upload service
func ProvideImageService(
	images ports.ImageStore,
	sessionManager *sessions.Manager,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.ImageService {
	return services.NewImageService(images, sessionManager, publisher, logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

func registerCommand[C bus.Command](b *bus.CommandBus, logger *zap.Logger, handle func(context.Context, C) error) {
	var zero C
	err := b.Register(zero, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			typed, ok := cmd.(C)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return handle(ctx, typed)
		},
	})
	if err != nil {
		logger.Error("Failed to register command handler", zap.Error(err))
	}
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	users ports.UserRepository,
	boards ports.BoardRepository,
	elements ports.ElementRepository,
	images ports.ImageStore,
	sessionManager *sessions.Manager,
	publisher ports.EventPublisher,
	recorder observability.Recorder,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(recorder),
	)

	registerCommand(commandBus, logger, commandhandlers.NewCreateUserHandler(users, publisher, logger).Handle)
	registerCommand(commandBus, logger, commandhandlers.NewSelectUserHandler(users, logger).Handle)
	registerCommand(commandBus, logger, commandhandlers.NewDeleteUserHandler(users, publisher, logger).Handle)

	registerCommand(commandBus, logger, commandhandlers.NewCreateBoardHandler(boards, publisher, logger).Handle)
	registerCommand(commandBus, logger, commandhandlers.NewUpdateBoardHandler(boards, publisher, logger).Handle)
	registerCommand(commandBus, logger, commandhandlers.NewDeleteBoardHandler(boards, elements, images, sessionManager, publisher, logger).Handle)
	registerCommand(commandBus, logger, commandhandlers.NewJoinBoardHandler(boards, logger).Handle)

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

func registerQuery[Q querybus.Query, R any](b *querybus.QueryBus, logger *zap.Logger, handle func(context.Context, Q) (R, error)) {
	var zero Q
	err := b.Register(zero, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(Q)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			result, err := handle(ctx, typed)
			if err != nil {
				return nil, err
			}
			return result, nil
		},
	})
	if err != nil {
		logger.Error("Failed to register query handler", zap.Error(err))
	}
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	users ports.UserRepository,
	boards ports.BoardRepository,
	elements ports.ElementRepository,
	images ports.ImageStore,
	recorder observability.Recorder,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus(recorder)

	catalog := queryhandlers.NewCatalogHandler()
	registerQuery(queryBus, logger, catalog.Kingdoms)
	registerQuery(queryBus, logger, catalog.Kingdom)
	registerQuery(queryBus, logger, catalog.Avatars)
	registerQuery(queryBus, logger, catalog.Templates)

	userQueries := queryhandlers.NewUserQueryHandler(users)
	registerQuery(queryBus, logger, userQueries.List)
	registerQuery(queryBus, logger, userQueries.Get)

	boardQueries := queryhandlers.NewBoardQueryHandler(boards, elements, users, logger)
	registerQuery(queryBus, logger, boardQueries.List)
	registerQuery(queryBus, logger, boardQueries.Get)
	registerQuery(queryBus, logger, boardQueries.Users)

	imageQueries := queryhandlers.NewImageQueryHandler(images)
	registerQuery(queryBus, logger, imageQueries.List)
	registerQuery(queryBus, logger, imageQueries.Info)

	return queryBus
}

// ProvideRouter creates the REST router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessionManager *sessions.Manager,
	imageService *services.ImageService,
	users ports.UserRepository,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, sessionManager, imageService, users, collector, cfg, logger)
}

// ProvideHTTPHandler builds the router's handler
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
