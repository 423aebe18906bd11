package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dukex/formtrigger/pkg/activator"
	"github.com/dukex/formtrigger/pkg/cmd"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/log"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/retention"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "formtrigger-activator",
		Usage:                 "Complete form triggers from dispatched submission events",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewSeedCommand(),
		},
		Flags: append(append(cmd.CommonFlags(), cmd.RetentionFlags()...),
			&cli.StringFlag{
				Name:    "activator-id",
				Aliases: []string{"id"},
				Usage:   "Custom activator ID (auto-generated if not provided)",
				Sources: cli.EnvVars("ACTIVATOR_ID"),
			},
			&cli.IntFlag{
				Name:    "metrics-port",
				Usage:   "Port serving /metrics (disabled when 0)",
				Value:   0,
				Sources: cli.EnvVars("METRICS_PORT"),
			},
		),
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String(cmd.FlagLogLevel), command.String(cmd.FlagLogFormat))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	activatorID := command.String("activator-id")
	if activatorID == "" {
		activatorID = "activator-" + uuid.NewString()[:8]
	}

	logger := log.WithModule("formtrigger-activator").With("activator_id", activatorID)

	shutdownTracing, err := cmd.SetupTracing(ctx, command.Bool(cmd.FlagOtelEnabled), "formtrigger-activator", logger)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	logger.InfoContext(ctx, "Initializing activator")

	promRegistry := prometheus.NewRegistry()

	m, err := metrics.New(promRegistry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String(cmd.FlagDatabaseURL))
	if err != nil {
		return err
	}
	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String(cmd.FlagEventBus), command.String(cmd.FlagKafkaBrokers), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	redisClient, err := cmd.NewRedisClient(command.String(cmd.FlagRedisURL))
	if err != nil {
		return err
	}

	counter := cmd.NewCounter(redisClient)
	defer func() {
		if err := counter.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close counter", "error", err)
		}
	}()

	hookRegistry := hooks.NewRegistry()
	registry := cmd.NewRegistry(logger, hookRegistry, nil, "", m)

	pruner, err := startRetention(ctx, command, persistence, logger)
	if err != nil {
		return err
	}

	if pruner != nil {
		defer func() {
			if err := pruner.Stop(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to stop log retention", "error", err)
			}
		}()
	}

	if port := command.Int("metrics-port"); port > 0 {
		go serveMetrics(ctx, port, promRegistry, logger)
	}

	return activator.New(logger, activator.Config{
		ID:          activatorID,
		Persistence: persistence,
		EventBus:    eventBus,
		Triggers:    registry,
		Hooks:       hookRegistry,
		Counter:     counter,
		Metrics:     m,
	}).Start(ctx)
}

// startRetention schedules log pruning. It returns nil when retention is
// disabled.
func startRetention(
	ctx context.Context,
	command *cli.Command,
	store persistence.Persistence,
	logger *slog.Logger,
) (*retention.Pruner, error) {
	keep := command.Duration(cmd.FlagLogRetention)
	if keep <= 0 {
		return nil, nil
	}

	pruner, err := retention.NewPruner(store, command.String(cmd.FlagRetentionSchedule), keep, logger)
	if err != nil {
		return nil, err
	}

	if err := pruner.Start(ctx); err != nil {
		return nil, err
	}

	return pruner, nil
}

func serveMetrics(ctx context.Context, port int, gatherer prometheus.Gatherer, logger *slog.Logger) {
	app := fiber.New()
	app.Get("/metrics", metrics.Handler(gatherer))

	go func() {
		<-ctx.Done()

		if err := app.Shutdown(); err != nil {
			logger.Error("Failed to stop metrics server", "error", err)
		}
	}()

	if err := app.Listen(":" + strconv.Itoa(port)); err != nil {
		logger.Error("Metrics server stopped", "error", err)
	}
}
