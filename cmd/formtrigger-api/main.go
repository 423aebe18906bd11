package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/formtrigger/pkg/activator"
	"github.com/dukex/formtrigger/pkg/cmd"
	"github.com/dukex/formtrigger/pkg/dispatch"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/log"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "formtrigger-api",
		Usage:                 "Receive form submissions and manage form automations",
		EnableShellCompletion: true,
		Flags: append(cmd.CommonFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "phone-region",
				Usage:   "Default region used to normalize phone fields to E.164",
				Value:   "US",
				Sources: cli.EnvVars("PHONE_REGION"),
			},
			&cli.BoolFlag{
				Name:    "embedded-activator",
				Usage:   "Run the activator inside the API process (required with the gochannel event bus)",
				Sources: cli.EnvVars("EMBEDDED_ACTIVATOR"),
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

	logger := log.WithModule("api")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := cmd.SetupTracing(ctx, command.Bool(cmd.FlagOtelEnabled), "formtrigger-api", logger)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	logger.InfoContext(ctx, "Initializing form trigger API")

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

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

	sessions := cmd.NewSessionStore(redisClient)
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close session store", "error", err)
		}
	}()

	hookRegistry := hooks.NewRegistry()
	dispatcher := dispatch.New(logger, eventBus, m)
	registry := cmd.NewRegistry(logger, hookRegistry, dispatcher, command.String("phone-region"), m)

	if command.Bool("embedded-activator") {
		embedded := activator.New(logger, activator.Config{
			ID:          "embedded-" + uuid.NewString()[:8],
			Persistence: persistence,
			EventBus:    eventBus,
			Triggers:    registry,
			Hooks:       hookRegistry,
			Counter:     cmd.NewCounter(redisClient),
			Metrics:     m,
		})

		go func() {
			if err := embedded.Start(ctx); err != nil {
				logger.ErrorContext(ctx, "Embedded activator stopped", "error", err)
				stop()
			}
		}()
	} else if command.String(cmd.FlagEventBus) == "gochannel" {
		logger.WarnContext(ctx, "gochannel event bus without embedded activator: dispatched events are never consumed")
	}

	api := NewAPI(logger, persistence, registry, hookRegistry, sessions, m, promRegistry)

	if err := api.Start(ctx, command.Int("port")); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	logger.Info("API server stopped")

	return nil
}
