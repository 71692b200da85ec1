package di

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/commands/bus"
	querybus "github.com/varangian-core/magical-board/application/queries/bus"
	"github.com/varangian-core/magical-board/application/sessions"
	"github.com/varangian-core/magical-board/infrastructure/config"
	"github.com/varangian-core/magical-board/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	LogLevel   zap.AtomicLevel
	Tracer     *observability.TracerProvider
	Sessions   *sessions.Manager
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    *observability.Collector
	Handler    http.Handler
}
