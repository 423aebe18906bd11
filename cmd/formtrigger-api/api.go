// Package main provides the form trigger API server.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/formtrigger/pkg/auth"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/dukex/formtrigger/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	hooks       *hooks.Registry
	sessions    auth.SessionStore
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	hookRegistry *hooks.Registry,
	sessions auth.SessionStore,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		hooks:       hookRegistry,
		sessions:    sessions,
		metrics:     m,
		gatherer:    gatherer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.persistence, a.registry, a.hooks, a.validate, a.metrics)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))
	app.Use(a.metrics.Middleware())

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Form Trigger API")
	})

	app.Get("/health", handlers.HealthCheck)

	if a.gatherer != nil {
		app.Get("/metrics", metrics.Handler(a.gatherer))
	}

	app.Use(web.Authenticate(a.sessions, a.logger))

	app.Post("/forms/submissions", handlers.SubmitForm)

	t := app.Group("/triggers")
	t.Get("/", handlers.GetTriggers)
	t.Get("/:type", handlers.GetTrigger)

	w := app.Group("/automations", web.RequireUser())
	w.Get("/", handlers.GetAutomations)
	w.Post("/", handlers.CreateAutomation)
	w.Get("/:id", handlers.GetAutomation)
	w.Delete("/:id", handlers.DeleteAutomation)

	l := app.Group("/logs", web.RequireUser())
	l.Get("/", handlers.GetLogs)
	l.Get("/:id", handlers.GetLog)

	return app
}

// Start serves the API until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			a.logger.Error("Failed to shut down API server", "error", err)
		}
	}()

	return app.Listen(":" + strconv.Itoa(port))
}
