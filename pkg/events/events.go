// Package events defines the messages exchanged over the trigger event bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topics.
const (
	TriggerEventsTopic    = "formtrigger.trigger-events"
	TriggerCompletedTopic = "formtrigger.trigger-completed"
)

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TriggerDispatchedEvent EventType = "trigger.dispatched"
	TriggerCompletedEvent  EventType = "trigger.completed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
	}
}

// TriggerCompleted is published when a user completes a stored trigger, i.e.
// a deserving event brought the trigger's count to its required times.
type TriggerCompleted struct {
	BaseEvent

	AutomationID string            `json:"automation_id"`
	TriggerID    string            `json:"trigger_id"`
	TriggerType  string            `json:"trigger_type"`
	UserID       int64             `json:"user_id"`
	LogID        string            `json:"log_id"`
	Tags         map[string]string `json:"tags"`
}

func (e TriggerCompleted) GetType() EventType {
	return TriggerCompletedEvent
}
