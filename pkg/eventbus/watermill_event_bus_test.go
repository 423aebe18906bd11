package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/formtrigger/pkg/channels/gochannel"
	"github.com/dukex/formtrigger/pkg/eventbus"
	"github.com/dukex/formtrigger/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub := gochannel.CreateTestChannel(watermill.NopLogger{})
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandleTriggerEvent(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *events.TriggerEvent, 1)

	err := bus.Handle(events.TriggerDispatchedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.TriggerEvent)

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	sent := events.NewTriggerEvent("happyforms_submit_form", 5, 12, map[string]string{"email": "ada@example.com"})
	require.NoError(t, bus.Publish(ctx, "5", sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "happyforms_submit_form", got.Trigger)
		assert.Equal(t, int64(5), got.UserID)
		require.NotNil(t, got.PostID)
		assert.Equal(t, int64(12), *got.PostID)
		assert.Equal(t, "ada@example.com", got.FormFields["email"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_RoutesCompletedEventsSeparately(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	completed := make(chan *events.TriggerCompleted, 1)

	require.NoError(t, bus.Handle(events.TriggerCompletedEvent, func(_ context.Context, event any) error {
		completed <- event.(*events.TriggerCompleted)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	event := events.TriggerCompleted{
		BaseEvent:   events.NewBaseEvent(events.TriggerCompletedEvent),
		TriggerID:   "trigger-1",
		TriggerType: "happyforms_submit_form",
		UserID:      5,
	}
	require.NoError(t, bus.Publish(ctx, "5", event))

	select {
	case got := <-completed:
		assert.Equal(t, "trigger-1", got.TriggerID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

type unknownEvent struct{}

func (unknownEvent) GetType() events.EventType { return "unknown" }

func TestWatermillEventBus_UnknownEventType(t *testing.T) {
	bus := newTestBus(t)

	err := bus.Publish(context.Background(), "k", unknownEvent{})
	require.Error(t, err)

	err = bus.Handle("unknown", func(context.Context, any) error { return errors.New("never") })
	require.Error(t, err)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
