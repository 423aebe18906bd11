// Package retention periodically deletes completion logs older than the
// configured retention.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// LogStore is the part of the persistence layer the pruner needs.
type LogStore interface {
	DeleteLogsBefore(ctx context.Context, before time.Time) (int64, error)
}

type Pruner struct {
	Schedule  string
	Retention time.Duration

	store  LogStore
	cron   *cron.Cron
	now    func() time.Time
	logger *slog.Logger
}

func NewPruner(store LogStore, schedule string, retention time.Duration, logger *slog.Logger) (*Pruner, error) {
	pruner := &Pruner{
		Schedule:  schedule,
		Retention: retention,
		store:     store,
		now:       time.Now,
		logger: logger.With(
			"module", "retention",
			"schedule", schedule,
			"retention", retention,
		),
	}

	if err := pruner.Validate(); err != nil {
		return nil, err
	}

	return pruner, nil
}

func (p *Pruner) Validate() error {
	if p.Retention <= 0 {
		return errors.New("log retention must be positive")
	}

	if p.Schedule == "" {
		return errors.New("retention schedule is required")
	}

	if _, err := cron.ParseStandard(p.Schedule); err != nil {
		return fmt.Errorf("invalid retention schedule: %w", err)
	}

	return nil
}

// Start schedules the pruning job. Runs never overlap.
func (p *Pruner) Start(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Starting log retention")

	p.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	id, err := p.cron.AddFunc(p.Schedule, func() {
		if _, err := p.Prune(context.WithoutCancel(ctx)); err != nil {
			p.logger.Error("Failed to prune logs", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}

	p.logger.InfoContext(ctx, "Added retention job", "id", id)
	p.cron.Start()

	return nil
}

// Prune deletes the logs older than the retention.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().UTC().Add(-p.Retention)

	deleted, err := p.store.DeleteLogsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete logs before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	p.logger.InfoContext(ctx, "Pruned logs", "deleted", deleted, "cutoff", cutoff)

	return deleted, nil
}

func (p *Pruner) Stop(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Stopping log retention")

	if p.cron != nil {
		<-p.cron.Stop().Done()
	}

	return nil
}
