// Package web provides the HTTP handlers of the form trigger API.
package web

import (
	"encoding/json"

	"github.com/dukex/formtrigger/pkg/models"
)

// SubmissionRequest is the success notification the form plugin posts after a
// submission was accepted.
type SubmissionRequest struct {
	Form       *models.Form    `json:"form"       validate:"required"`
	Submission json.RawMessage `json:"submission" validate:"required"`
}

// CreateAutomationRequest represents the request body for creating an automation.
type CreateAutomationRequest struct {
	Title    string           `json:"title"    validate:"required,min=3"`
	Status   string           `json:"status"   validate:"omitempty,oneof=active inactive"`
	Triggers []TriggerRequest `json:"triggers" validate:"required,min=1,dive"`
}

type TriggerRequest struct {
	Type    string                `json:"type"    validate:"required"`
	Options models.TriggerOptions `json:"options"`
}

// LogResponse is a log entry together with the fields the viewer displays.
type LogResponse struct {
	*models.Log

	Fields map[string]models.LogField `json:"fields"`
}
