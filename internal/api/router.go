package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/saturnino-fabrica-de-software/facecap/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facecap/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facecap/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facecap/internal/audit"
)

// Dependencies wires the detection service's collaborators into the router.
// UsageReader and DB are nil when the service runs without a database.
type Dependencies struct {
	Analyzer     handler.FaceAnalyzer
	ProviderName string
	UsageTracker handler.UsageTracker
	UsageReader  handler.UsageReader
	AuditLogger  audit.Logger
	DB           *pgxpool.Pool
	ResultCache  handler.ResultCache
	RateLimiter  middleware.DetectLimiter
	RateLimit    int
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Face Detection API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var pinger handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		pinger = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	api := r.app.Group("/api")

	detectHandler := handler.NewDetectHandler(
		r.deps.Analyzer,
		r.deps.UsageTracker,
		r.deps.AuditLogger,
		r.logger,
		r.deps.ProviderName,
	)
	if r.deps.ResultCache != nil {
		detectHandler.WithCache(r.deps.ResultCache)
	}

	if r.deps.RateLimiter != nil && r.deps.RateLimit > 0 {
		api.Post("/detect", middleware.RateLimit(r.deps.RateLimiter, r.deps.RateLimit, r.logger), detectHandler.Detect)
	} else {
		api.Post("/detect", detectHandler.Detect)
	}

	if r.deps.UsageReader != nil {
		usageHandler := handler.NewUsageHandler(r.deps.UsageReader, r.logger)
		api.Get("/usage", usageHandler.GetUsage)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
