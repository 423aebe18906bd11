package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dukex/formtrigger/pkg/cmd"
	"github.com/dukex/formtrigger/pkg/config"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

func NewSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create or replace automations from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the automations YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    cmd.FlagDatabaseURL,
				Usage:   "Database connection URL for persistence",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := slog.With(
				"module", "formtrigger-activator",
				"action", "seed",
			)

			automations, err := config.LoadSeed(command.String("file"))
			if err != nil {
				return err
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String(cmd.FlagDatabaseURL))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			reg := cmd.NewRegistry(logger, hooks.NewRegistry(), nil, "", nil)

			return seedAutomations(ctx, os.Stdout, store, reg, automations)
		},
	}
}

// seedAutomations validates every automation before saving any of them.
func seedAutomations(
	ctx context.Context,
	w io.Writer,
	store persistence.Persistence,
	reg *registry.Registry,
	automations []*models.Automation,
) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	for _, automation := range automations {
		if automation.ID == "" {
			automation.ID = uuid.NewString()
		}

		if err := validate.Struct(automation); err != nil {
			return fmt.Errorf("automation %q: %w", automation.Title, err)
		}

		for _, trigger := range automation.Triggers {
			if trigger.ID == "" {
				trigger.ID = uuid.NewString()
			}

			if err := reg.ValidateOptions(trigger.Type, trigger.Options); err != nil {
				return fmt.Errorf("automation %q: %w", automation.Title, err)
			}
		}
	}

	for _, automation := range automations {
		if err := store.SaveAutomation(ctx, automation); err != nil {
			return fmt.Errorf("failed to save automation %s: %w", automation.ID, err)
		}

		_, _ = fmt.Fprintf(w, "Seeded automation %s (%s) with %d trigger(s)\n",
			automation.Title, automation.ID, len(automation.Triggers))
	}

	return nil
}
