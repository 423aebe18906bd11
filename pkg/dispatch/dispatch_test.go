package dispatch_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/formtrigger/pkg/channels/gochannel"
	"github.com/dukex/formtrigger/pkg/dispatch"
	"github.com/dukex/formtrigger/pkg/eventbus"
	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/mocks"
	"github.com/dukex/formtrigger/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTriggerEvent_PublishesKeyedByUser(t *testing.T) {
	bus := &mocks.MockEventBus{}
	d := dispatch.New(slog.Default(), bus, nil)
	event := testutil.CreateTestEvent(42, 12, map[string]string{"name": "Ada"})

	bus.On("Publish", mock.Anything, "42", *event).Return(nil).Once()

	require.NoError(t, d.TriggerEvent(context.Background(), *event))
	bus.AssertExpectations(t)
}

func TestTriggerEvent_AssignsMissingEventID(t *testing.T) {
	bus := &mocks.MockEventBus{}
	d := dispatch.New(slog.Default(), bus, nil)

	postID := int64(12)
	event := events.TriggerEvent{Trigger: testutil.SubmitFormTrigger, UserID: 42, PostID: &postID}

	bus.On("Publish", mock.Anything, "42", mock.MatchedBy(func(e events.TriggerEvent) bool {
		return e.ID != "" && e.Type == events.TriggerDispatchedEvent && !e.Timestamp.IsZero()
	})).Return(nil).Once()

	require.NoError(t, d.TriggerEvent(context.Background(), event))
	bus.AssertExpectations(t)
}

func TestTriggerEvent_RejectsInvalidEvents(t *testing.T) {
	tests := []struct {
		name  string
		event events.TriggerEvent
	}{
		{name: "missing trigger", event: events.NewTriggerEvent("", 42, 12, nil)},
		{name: "missing user", event: events.NewTriggerEvent(testutil.SubmitFormTrigger, 0, 12, nil)},
		{name: "negative user", event: events.NewTriggerEvent(testutil.SubmitFormTrigger, -1, 12, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &mocks.MockEventBus{}
			d := dispatch.New(slog.Default(), bus, nil)

			err := d.TriggerEvent(context.Background(), tt.event)

			require.ErrorIs(t, err, events.ErrInvalidEventData)
			bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTriggerEvent_WrapsPublishErrors(t *testing.T) {
	bus := &mocks.MockEventBus{}
	d := dispatch.New(slog.Default(), bus, nil)
	failure := errors.New("broker unavailable")

	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(failure).Once()

	err := d.TriggerEvent(context.Background(), *testutil.CreateTestEvent(42, 12, nil))

	require.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "failed to publish happyforms_submit_form event")
}

func TestTriggerEvent_ReachesSubscribers(t *testing.T) {
	pub, sub := gochannel.CreateTestChannel(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pub, sub, slog.Default())
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.TriggerEvent, 1)

	require.NoError(t, bus.Handle(events.TriggerDispatchedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.TriggerEvent)

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, bus.Subscribe(ctx))

	d := dispatch.New(slog.Default(), bus, nil)
	sent := testutil.CreateTestEvent(42, 12, map[string]string{"name": "Ada"})
	require.NoError(t, d.TriggerEvent(ctx, *sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, int64(42), got.UserID)
		require.NotNil(t, got.PostID)
		assert.Equal(t, int64(12), *got.PostID)
		assert.Equal(t, map[string]string{"name": "Ada"}, got.FormFields)
	case <-time.After(5 * time.Second):
		t.Fatal("trigger event was not delivered")
	}
}
