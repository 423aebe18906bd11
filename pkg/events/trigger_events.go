package events

import "errors"

// ErrInvalidEventData is returned when a trigger event is missing required data.
var ErrInvalidEventData = errors.New("invalid event data")

// TriggerEvent is the record an integration hands to the engine's generic
// trigger dispatch: the trigger type, the acting user, an optional post (for
// form triggers, the form id and title) and the captured form fields.
type TriggerEvent struct {
	BaseEvent

	Trigger    string            `json:"trigger"               validate:"required"`
	UserID     int64             `json:"user_id"               validate:"required,gt=0"`
	PostID     *int64            `json:"post_id,omitempty"`
	PostTitle  string            `json:"post_title,omitempty"`
	FormFields map[string]string `json:"form_fields,omitempty"`
}

func (e TriggerEvent) GetType() EventType {
	return TriggerDispatchedEvent
}

// NewTriggerEvent creates a trigger event carrying the given form data.
func NewTriggerEvent(trigger string, userID, postID int64, formFields map[string]string) TriggerEvent {
	if formFields == nil {
		formFields = make(map[string]string)
	}

	return TriggerEvent{
		BaseEvent:  NewBaseEvent(TriggerDispatchedEvent),
		Trigger:    trigger,
		UserID:     userID,
		PostID:     &postID,
		FormFields: formFields,
	}
}

// HasPostID reports whether the event carries a post id.
func (e TriggerEvent) HasPostID() bool {
	return e.PostID != nil
}

// Validate performs basic validation on the event structure.
func (e TriggerEvent) Validate() error {
	if e.Trigger == "" {
		return errors.Join(ErrInvalidEventData, errors.New("trigger is required"))
	}

	if e.UserID <= 0 {
		return errors.Join(ErrInvalidEventData, errors.New("user_id is required"))
	}

	return nil
}
