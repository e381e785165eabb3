package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/golinkhq/golink/golink"
	"github.com/golinkhq/golink/internal/app/repository"
	"github.com/golinkhq/golink/internal/app/service"
	inthttp "github.com/golinkhq/golink/internal/http/handler"
	"github.com/golinkhq/golink/internal/http/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server needs wired in.
type Dependencies struct {
	Logger         *zap.Logger
	Postgres       *pgxpool.Pool
	Redis          *redis.Client
	NATS           *nats.Conn
	JetStream      nats.JetStreamContext
	Links          repository.LinkRepository
	Clicks         repository.ClickEventRepository
	LinkService    service.LinkService
	Lookup         golink.ContextLookupFunc
	ClickPublisher *service.ClickPublisher
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates the HTTP server with middleware and routes in place.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())

	// Only the management API is rate limited; redirects must stay cheap.
	if s.deps.Redis != nil {
		s.app.Use("/api", middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:      s.deps.Logger,
		LinkService: s.deps.LinkService,
	})
	apiHandler.Register(s.app)

	// Registered last: its catch-all treats every remaining path as a
	// shortlink resolution request.
	resolveHandler := inthttp.NewResolveHandler(inthttp.ResolveDeps{
		Logger:         s.deps.Logger,
		Lookup:         s.deps.Lookup,
		Links:          s.deps.Links,
		Clicks:         s.deps.Clicks,
		ClickPublisher: s.deps.ClickPublisher,
	})
	resolveHandler.Register(s.app)
}
