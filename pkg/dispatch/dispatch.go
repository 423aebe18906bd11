// Package dispatch is the engine's generic trigger entry point: integrations
// hand it trigger events and it publishes them for the activator.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dukex/formtrigger/pkg/eventbus"
	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/otelhelper"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
)

type Dispatcher struct {
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	validate  *validator.Validate
	metrics   *metrics.Metrics
}

// New creates a dispatcher publishing on publisher. m may be nil.
func New(log *slog.Logger, publisher eventbus.EventPublisher, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		logger:    log.With("module", "dispatch"),
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		metrics:   m,
	}
}

// TriggerEvent publishes event keyed by its user id, so events of one user
// keep their order on partitioned transports.
func (d *Dispatcher) TriggerEvent(ctx context.Context, event events.TriggerEvent) error {
	ctx, span := otelhelper.StartSpan(ctx, "dispatch.trigger_event",
		attribute.String(otelhelper.TriggerTypeKey, event.Trigger),
		attribute.Int64(otelhelper.UserIDKey, event.UserID),
		attribute.String(otelhelper.EventIDKey, event.ID),
	)
	defer span.End()

	if err := d.validate.Struct(event); err != nil {
		err = errors.Join(events.ErrInvalidEventData, err)
		otelhelper.SetError(span, err)
		d.metrics.EventDispatched(event.Trigger, err)

		return err
	}

	if event.ID == "" {
		event.BaseEvent = events.NewBaseEvent(events.TriggerDispatchedEvent)
	}

	if event.PostID != nil {
		span.SetAttributes(attribute.Int64(otelhelper.FormIDKey, *event.PostID))
	}

	key := strconv.FormatInt(event.UserID, 10)

	if err := d.publisher.Publish(ctx, key, event); err != nil {
		err = fmt.Errorf("failed to publish %s event: %w", event.Trigger, err)
		otelhelper.SetError(span, err)
		d.metrics.EventDispatched(event.Trigger, err)

		return err
	}

	d.metrics.EventDispatched(event.Trigger, nil)
	d.logger.DebugContext(ctx, "Published trigger event",
		"event_id", event.ID,
		"trigger", event.Trigger,
		"user_id", event.UserID)

	return nil
}
