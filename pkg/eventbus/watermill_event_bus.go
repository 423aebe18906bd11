package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/formtrigger/pkg/events"
)

// topics routes each event type to its topic.
var topics = map[events.EventType]string{
	events.TriggerDispatchedEvent: events.TriggerEventsTopic,
	events.TriggerCompletedEvent:  events.TriggerCompletedTopic,
}

type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	logger        *slog.Logger
	mu            sync.RWMutex
	subscriptions map[events.EventType]EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber, logger *slog.Logger) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		logger:        logger.With("module", "event_bus"),
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	topic, ok := topics[event.GetType()]
	if !ok {
		return fmt.Errorf("no topic for event type %q", event.GetType())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.GetType(), err)
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(topic, msg)
}

// Subscribe starts one consumer goroutine per topic with a registered handler.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	subscribed := make(map[string]bool)

	for eventType := range eb.subscriptions {
		topic := topics[eventType]
		if subscribed[topic] {
			continue
		}

		messages, err := eb.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		subscribed[topic] = true

		go eb.consume(ctx, messages)
	}

	return nil
}

func (eb *WatermillEventBus) consume(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

		eb.mu.RLock()
		handler, exists := eb.subscriptions[eventType]
		eb.mu.RUnlock()

		if !exists {
			msg.Ack()

			continue
		}

		var event any

		switch eventType {
		case events.TriggerDispatchedEvent:
			event = &events.TriggerEvent{}
		case events.TriggerCompletedEvent:
			event = &events.TriggerCompleted{}
		default:
			msg.Nack()

			continue
		}

		if err := json.Unmarshal(msg.Payload, event); err != nil {
			eb.logger.Error("Failed to decode event", "event_type", eventType, "message_id", msg.UUID, "error", err)
			// A payload that does not decode will never decode; drop it.
			msg.Ack()

			continue
		}

		if err := handler(ctx, event); err != nil {
			eb.logger.Error("Event handler failed", "event_type", eventType, "message_id", msg.UUID, "error", err)
			msg.Nack()

			continue
		}

		msg.Ack()
	}
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	if _, ok := topics[eventType]; !ok {
		return fmt.Errorf("no topic for event type %q", eventType)
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscriptions[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
