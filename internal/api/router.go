package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/visionworks/facegate/internal/api/docs"
	"github.com/visionworks/facegate/internal/api/handler"
	"github.com/visionworks/facegate/internal/api/middleware"
)

type Dependencies struct {
	Gateway handler.GatewayService
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facegate API",
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

	// Health endpoints
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/", healthHandler.Info)
	r.app.Get("/health", healthHandler.Health)

	if r.deps != nil {
		classifyHandler := handler.NewClassifyHandler(r.deps.Gateway, r.logger)

		r.app.Post("/analyze", classifyHandler.Analyze)
		r.app.Post("/recognize", classifyHandler.Recognize)
		r.app.Post("/register", classifyHandler.Register)
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
