// Package happyforms connects HappyForms form submissions to the automation
// engine through the "User submits a form" trigger.
package happyforms

import (
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/protocol"
	"github.com/dukex/formtrigger/pkg/tags"
)

const (
	Integration = "happyforms"
	TriggerType = "happyforms_submit_form"

	// PostType is the post type HappyForms stores its forms as.
	PostType = "happyform"

	// FormFieldsKey is the log meta and log field key of the submitted values.
	FormFieldsKey = "form_fields"

	acceptedArgs = 2
)

var _ protocol.Trigger = (*SubmitForm)(nil)

func minimum(n int) *int { return &n }

// Definition describes the submit form trigger to the engine.
func (s *SubmitForm) Definition() models.TriggerDefinition {
	return models.TriggerDefinition{
		Type:         TriggerType,
		Integration:  Integration,
		Label:        "User submits a form",
		SelectOption: "User submits <strong>a form</strong>",
		EditLabel:    "User submits {post} {times} time(s)",
		LogLabel:     "User submits {post}",
		Action:       hooks.FormSubmissionSuccess,
		Priority:     hooks.DefaultPriority,
		AcceptedArgs: acceptedArgs,
		Options: []models.TriggerOption{
			{
				Key:             models.OptionPost,
				Name:            "Form:",
				Type:            "post",
				OptionNoneLabel: "any form",
				OptionNoneValue: models.OptionAny,
				PostType:        PostType,
			},
			{
				Key:     models.OptionTimes,
				Name:    "Number of times:",
				Type:    "text",
				Default: 1,
			},
		},
		Tags: map[string]models.TagDef{
			tags.FormFieldPrefix + "FIELD_NAME": {
				Label:   "Form field value",
				Type:    "text",
				Preview: `Form field value, replace "FIELD_NAME" by the field name`,
			},
			"post_id": {
				Label:   "Form ID",
				Type:    "integer",
				Preview: "123",
			},
			"post_title": {
				Label:   "Form Title",
				Type:    "text",
				Preview: "The form title",
			},
			"times": {
				Label:   "Number of times",
				Type:    "integer",
				Preview: "1",
			},
		},
		OptionsSchema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				models.OptionPost: {
					Type:        []string{"string", "integer"},
					Description: `Form id to listen to, or "any"`,
					Pattern:     "^(any|[0-9]+)$",
				},
				models.OptionPostLabel: {
					Type:        []string{"string"},
					Description: "Title of the selected form",
				},
				models.OptionTimes: {
					Type:        []string{"integer", "string"},
					Description: "Submissions required to complete the trigger",
					Default:     1,
					Minimum:     minimum(1),
					Pattern:     "^[1-9][0-9]*$",
				},
			},
		},
	}
}
