package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/commands/bus"
	"github.com/varangian-core/magical-board/application/ports"
	querybus "github.com/varangian-core/magical-board/application/queries/bus"
	"github.com/varangian-core/magical-board/application/services"
	"github.com/varangian-core/magical-board/application/sessions"
	"github.com/varangian-core/magical-board/infrastructure/config"
	"github.com/varangian-core/magical-board/interfaces/http/rest/handlers"
	"github.com/varangian-core/magical-board/interfaces/http/rest/middleware"
	"github.com/varangian-core/magical-board/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	sessions   *sessions.Manager
	images     *services.ImageService
	users      ports.UserRepository
	metrics    *observability.Collector
	config     *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessionManager *sessions.Manager,
	images *services.ImageService,
	users ports.UserRepository,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		sessions:   sessionManager,
		images:     images,
		users:      users,
		metrics:    metrics,
		config:     cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", middleware.UserIDHeader},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.NewRateLimiter(rt.config.RateLimitRPS, rt.config.RateLimitBurst).Handler)
		r.Use(middleware.Identify(rt.users, rt.logger))

		catalogHandler := handlers.NewCatalogHandler(rt.queryBus, rt.logger)
		r.Get("/kingdoms", catalogHandler.ListKingdoms)
		r.Get("/kingdoms/{kingdomID}", catalogHandler.GetKingdom)
		r.Get("/avatars", catalogHandler.ListAvatars)
		r.Get("/templates", catalogHandler.ListTemplates)

		r.Route("/users", func(r chi.Router) {
			userHandler := handlers.NewUserHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/current", userHandler.CurrentUser)
			r.Post("/{userID}/select", userHandler.SelectUser)
			r.Delete("/{userID}", userHandler.DeleteUser)
		})

		imageHandler := handlers.NewImageHandler(rt.images, rt.queryBus, rt.logger)
		r.Route("/images", func(r chi.Router) {
			r.Get("/storage", imageHandler.StorageInfo)
			r.Delete("/{imageID}", imageHandler.DeleteImage)
		})

		r.Route("/boards", func(r chi.Router) {
			boardHandler := handlers.NewBoardHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Get("/", boardHandler.ListBoards)
			r.Post("/", boardHandler.CreateBoard)

			r.Route("/{boardID}", func(r chi.Router) {
				r.Get("/", boardHandler.GetBoard)
				r.Put("/", boardHandler.UpdateBoard)
				r.Delete("/", boardHandler.DeleteBoard)
				r.Get("/users", boardHandler.GetBoardUsers)
				r.Get("/images", imageHandler.ListBoardImages)
				r.Delete("/images", imageHandler.ClearBoardImages)

				r.Route("/session", rt.sessionRoutes(imageHandler))
			})
		})
	})

	return router
}

func (rt *Router) sessionRoutes(imageHandler *handlers.ImageHandler) func(r chi.Router) {
	sessionHandler := handlers.NewSessionHandler(rt.sessions, rt.commandBus, rt.logger)

	return func(r chi.Router) {
		r.Post("/", sessionHandler.OpenSession)
		r.Get("/", sessionHandler.GetSession)
		r.Delete("/", sessionHandler.CloseSession)

		r.Post("/background/click", sessionHandler.ClickBackground)
		r.Post("/timelines", sessionHandler.AddTimeline)
		r.Post("/images", imageHandler.Upload)

		r.Post("/edit", sessionHandler.BeginEdit)
		r.Post("/edit/input", sessionHandler.EditInput)
		r.Post("/edit/key", sessionHandler.EditKey)
		r.Post("/edit/blur", sessionHandler.Blur)

		r.Post("/elements", sessionHandler.AddElement)
		r.Route("/elements/{elementID}", func(r chi.Router) {
			r.Post("/drag", sessionHandler.DragElement)
			r.Post("/transform", sessionHandler.TransformElement)
			r.Post("/click", sessionHandler.ClickElement)
			r.Post("/delete", sessionHandler.DeleteElement)

			r.Post("/nodes", sessionHandler.AddNode)
			r.Post("/nodes/{nodeID}/drag", sessionHandler.DragNode)
			r.Post("/nodes/{nodeID}/connect", sessionHandler.ConnectNode)
			r.Delete("/nodes/{nodeID}", sessionHandler.RemoveNode)
			r.Get("/connections", sessionHandler.Connections)
		})
	}
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the session manager is wired
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.sessions == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
