package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dukex/formtrigger/pkg/cmd"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/urfave/cli/v3"
)

var ErrInvalidTriggers = errors.New("invalid triggers found")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the options of every stored trigger",
		Flags: []cli.Flag{
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
				"action", "validate",
			)

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

			return validateAutomations(ctx, os.Stdout, store, reg)
		},
	}
}

func validateAutomations(ctx context.Context, w io.Writer, store persistence.Persistence, reg *registry.Registry) error {
	automations, err := store.Automations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch automations: %w", err)
	}

	_, _ = fmt.Fprintln(w, "Trigger Validation Results:")
	_, _ = fmt.Fprintln(w, "===========================")

	valid, invalid := 0, 0

	for _, automation := range automations {
		_, _ = fmt.Fprintf(w, "\nAutomation: %s (%s, %s)\n", automation.Title, automation.ID, automation.Status)

		if len(automation.Triggers) == 0 {
			_, _ = fmt.Fprintln(w, "    ❌ INVALID: No triggers found for this automation.")
			invalid++

			continue
		}

		for _, trigger := range automation.Triggers {
			_, _ = fmt.Fprintf(w, "  Trigger: %s (%s)\n", trigger.ID, trigger.Type)

			if err := reg.ValidateOptions(trigger.Type, trigger.Options); err != nil {
				_, _ = fmt.Fprintf(w, "    ❌ INVALID: %v\n", err)
				invalid++

				continue
			}

			_, _ = fmt.Fprintln(w, "    ✅ VALID")
			valid++
		}
	}

	_, _ = fmt.Fprintf(w, "\nValidation Summary:\n")
	_, _ = fmt.Fprintf(w, "  Total triggers: %d\n", valid+invalid)
	_, _ = fmt.Fprintf(w, "  Valid triggers: %d\n", valid)
	_, _ = fmt.Fprintf(w, "  Invalid triggers: %d\n", invalid)

	if invalid > 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTriggers, invalid)
	}

	_, _ = fmt.Fprintln(w, "All triggers are valid! ✅")

	return nil
}
