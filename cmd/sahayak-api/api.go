// Package main provides the Sahayak API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/sahayakhq/sahayak/pkg/eventbus"
	"github.com/sahayakhq/sahayak/pkg/orchestrator"
	"github.com/sahayakhq/sahayak/pkg/web"
)

type API struct {
	logger       *slog.Logger
	orchestrator *orchestrator.Orchestrator
	store        web.ObjectStore
	eventBus     eventbus.EventBus
	apiKey       string
	validate     *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	o *orchestrator.Orchestrator,
	store web.ObjectStore,
	eventBus eventbus.EventBus,
	apiKey string,
) *API {
	return &API{
		logger:       logger,
		orchestrator: o,
		store:        store,
		eventBus:     eventBus,
		apiKey:       apiKey,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.orchestrator, a.store, a.validate, a.logger)

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	// Routes registered before the key check stay public.
	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Sahayak API")
	})

	app.Use(web.NewAPIKeyMiddleware(a.apiKey))

	if a.eventBus != nil {
		app.Use(web.NewAuditMiddleware(a.eventBus, a.logger))
	}

	app.Post("/chat", handlers.Chat)
	app.Post("/submit", handlers.Submit)
	app.Post("/upload-images", handlers.UploadImages)
	app.Post("/get-signed-url", handlers.GetSignedURL)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
