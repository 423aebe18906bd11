// Package activator evaluates dispatched trigger events against the stored
// automations: it applies the eligibility filters, counts completions and
// records a log entry when a user completes a trigger.
package activator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/formtrigger/pkg/counter"
	"github.com/dukex/formtrigger/pkg/eventbus"
	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/otelhelper"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/dukex/formtrigger/pkg/tags"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds the collaborators of an Activator. Metrics may be nil.
type Config struct {
	ID          string
	Persistence persistence.Persistence
	EventBus    eventbus.EventBus
	Triggers    *registry.Registry
	Hooks       *hooks.Registry
	Counter     counter.Counter
	Metrics     *metrics.Metrics
}

// Activator consumes trigger events and completes the stored triggers they
// satisfy.
type Activator struct {
	id          string
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	triggers    *registry.Registry
	hooks       *hooks.Registry
	counter     counter.Counter
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(logger *slog.Logger, cfg Config) *Activator {
	return &Activator{
		id:          cfg.ID,
		persistence: cfg.Persistence,
		eventBus:    cfg.EventBus,
		triggers:    cfg.Triggers,
		hooks:       cfg.Hooks,
		counter:     cfg.Counter,
		metrics:     cfg.Metrics,
		logger:      logger.With("module", "activator", "activator_id", cfg.ID),
	}
}

// Start subscribes to trigger events and blocks until ctx is cancelled.
func (a *Activator) Start(ctx context.Context) error {
	a.logger.InfoContext(ctx, "Starting activator")

	err := a.eventBus.Handle(events.TriggerDispatchedEvent, func(ctx context.Context, event any) error {
		triggerEvent, ok := event.(*events.TriggerEvent)
		if !ok {
			return fmt.Errorf("%w: unexpected payload %T", events.ErrInvalidEventData, event)
		}

		return a.HandleTriggerEvent(ctx, triggerEvent)
	})
	if err != nil {
		return fmt.Errorf("failed to register trigger event handler: %w", err)
	}

	if err := a.eventBus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to trigger events: %w", err)
	}

	a.logger.InfoContext(ctx, "Subscribed to trigger events - waiting for events...")

	<-ctx.Done()

	a.logger.Info("Activator context cancelled, stopping...")

	return nil
}

// HandleTriggerEvent evaluates one event against every active trigger of its
// type. Only a failure to load the triggers is returned, so the message is
// redelivered; failures of single triggers are logged since their siblings
// may already have counted the event.
func (a *Activator) HandleTriggerEvent(ctx context.Context, event *events.TriggerEvent) error {
	ctx, span := otelhelper.StartSpan(ctx, "activator.handle_trigger_event",
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.TriggerTypeKey, event.Trigger),
		attribute.Int64(otelhelper.UserIDKey, event.UserID),
	)
	defer span.End()

	logger := a.logger.With("event_id", event.ID, "trigger", event.Trigger, "user_id", event.UserID)

	if err := event.Validate(); err != nil {
		logger.WarnContext(ctx, "Dropping invalid trigger event", "error", err)

		return nil
	}

	matches, err := a.persistence.TriggersByType(ctx, event.Trigger, models.AutomationStatusActive)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to load %s triggers: %w", event.Trigger, err)
	}

	logger.DebugContext(ctx, "Found active triggers", "count", len(matches))

	for _, match := range matches {
		if err := a.activate(ctx, event, match); err != nil {
			otelhelper.SetError(span, err, attribute.String(otelhelper.TriggerIDKey, match.Trigger.ID))
			logger.ErrorContext(ctx, "Failed to activate trigger",
				"automation_id", match.Automation.ID,
				"trigger_id", match.Trigger.ID,
				"error", err)
		}
	}

	return nil
}

func (a *Activator) activate(ctx context.Context, event *events.TriggerEvent, match *models.TriggerMatch) error {
	trigger := match.Trigger
	options := trigger.Options

	deserves := a.hooks.UserDeserves.Apply(ctx, true, hooks.DeservesArgs{
		Trigger:    trigger,
		UserID:     event.UserID,
		Event:      event,
		Options:    options,
		Automation: match.Automation,
	})

	a.metrics.TriggerDecision(trigger.Type, deserves)

	if !deserves {
		a.logger.DebugContext(ctx, "User does not deserve trigger", "trigger_id", trigger.ID, "user_id", event.UserID)

		return nil
	}

	key := counter.Key(trigger.ID, event.UserID)

	count, err := a.counter.Increment(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to count trigger %s: %w", trigger.ID, err)
	}

	times := int64(options.Times())
	if count < times {
		a.logger.DebugContext(ctx, "Trigger progress",
			"trigger_id", trigger.ID,
			"user_id", event.UserID,
			"count", count,
			"times", times)

		return nil
	}

	if err := a.counter.Reset(ctx, key); err != nil {
		return fmt.Errorf("failed to reset count of trigger %s: %w", trigger.ID, err)
	}

	return a.complete(ctx, event, match)
}

func (a *Activator) complete(ctx context.Context, event *events.TriggerEvent, match *models.TriggerMatch) error {
	trigger := match.Trigger
	tagValues := tags.ForEvent(event, trigger.Options)

	meta := a.hooks.LogMeta.Apply(ctx, map[string]any{}, hooks.LogMetaArgs{
		Trigger:    trigger,
		UserID:     event.UserID,
		Event:      event,
		Options:    trigger.Options,
		Automation: match.Automation,
	})

	log := &models.Log{
		ID:           uuid.NewString(),
		Type:         models.LogTypeTrigger,
		ObjectID:     trigger.ID,
		ObjectType:   trigger.Type,
		AutomationID: match.Automation.ID,
		UserID:       event.UserID,
		PostID:       event.PostID,
		Title:        a.logTitle(trigger.Type, tagValues),
		Meta:         meta,
		CreatedAt:    time.Now().UTC(),
	}

	if err := a.persistence.SaveLog(ctx, log); err != nil {
		return fmt.Errorf("failed to save log of trigger %s: %w", trigger.ID, err)
	}

	completed := events.TriggerCompleted{
		BaseEvent:    events.NewBaseEvent(events.TriggerCompletedEvent),
		AutomationID: match.Automation.ID,
		TriggerID:    trigger.ID,
		TriggerType:  trigger.Type,
		UserID:       event.UserID,
		LogID:        log.ID,
		Tags:         tagValues,
	}
	completed.ID = a.eventBus.GenerateID()

	if err := a.eventBus.Publish(ctx, strconv.FormatInt(event.UserID, 10), completed); err != nil {
		return fmt.Errorf("failed to publish completion of trigger %s: %w", trigger.ID, err)
	}

	a.metrics.TriggerCompleted(trigger.Type)
	a.logger.InfoContext(ctx, "User completed trigger",
		"automation_id", match.Automation.ID,
		"trigger_id", trigger.ID,
		"user_id", event.UserID,
		"log_id", log.ID)

	return nil
}

func (a *Activator) logTitle(triggerType string, values map[string]string) string {
	definition, ok := a.triggers.Definition(triggerType)
	if !ok || definition.LogLabel == "" {
		return triggerType
	}

	return tags.Replace(definition.LogLabel, values)
}
