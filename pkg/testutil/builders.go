// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/google/uuid"
)

// SubmitFormTrigger is the trigger type of the form submission integration.
const SubmitFormTrigger = "happyforms_submit_form"

// CreateTestTrigger creates a form submission trigger listening to any form,
// completing after one submission.
func CreateTestTrigger(overrides ...func(*models.Trigger)) *models.Trigger {
	trigger := &models.Trigger{
		ID:   uuid.New().String(),
		Type: SubmitFormTrigger,
		Options: models.TriggerOptions{
			models.OptionPost:  models.OptionAny,
			models.OptionTimes: 1,
		},
	}

	for _, override := range overrides {
		override(trigger)
	}

	return trigger
}

// WithOptions replaces the trigger options.
func WithOptions(options models.TriggerOptions) func(*models.Trigger) {
	return func(t *models.Trigger) {
		t.Options = options
	}
}

// WithType sets the trigger type.
func WithType(triggerType string) func(*models.Trigger) {
	return func(t *models.Trigger) {
		t.Type = triggerType
	}
}

// CreateTestAutomation creates an active automation owning the given triggers.
func CreateTestAutomation(triggers ...*models.Trigger) *models.Automation {
	now := time.Now().UTC()
	automation := &models.Automation{
		ID:        uuid.New().String(),
		Title:     "Test Automation",
		Status:    models.AutomationStatusActive,
		Triggers:  triggers,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, trigger := range triggers {
		trigger.AutomationID = automation.ID
	}

	return automation
}

// CreateTestEvent creates a dispatched form submission event.
func CreateTestEvent(userID, formID int64, fields map[string]string) *events.TriggerEvent {
	event := events.NewTriggerEvent(SubmitFormTrigger, userID, formID, fields)

	return &event
}

// CreateTestLog creates a trigger log entry for the given trigger.
func CreateTestLog(trigger *models.Trigger, userID int64) *models.Log {
	return &models.Log{
		ID:           uuid.New().String(),
		Type:         models.LogTypeTrigger,
		ObjectID:     trigger.ID,
		ObjectType:   trigger.Type,
		AutomationID: trigger.AutomationID,
		UserID:       userID,
		Title:        "User submits any form",
		Meta:         map[string]any{},
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}
