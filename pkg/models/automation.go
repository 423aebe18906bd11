// Package models defines the domain records shared by the form integration and
// the automation engine adapters.
package models

import (
	"strconv"
	"strings"
	"time"
)

// AutomationStatus represents the lifecycle state of an automation.
type AutomationStatus string

const (
	AutomationStatusActive   AutomationStatus = "active"
	AutomationStatusInactive AutomationStatus = "inactive"
)

// Automation groups the triggers a user has to complete.
type Automation struct {
	ID        string           `json:"id"         yaml:"id"`
	Title     string           `json:"title"      yaml:"title"    validate:"required,min=3"`
	Status    AutomationStatus `json:"status"     yaml:"status"   validate:"required,oneof=active inactive"`
	Triggers  []*Trigger       `json:"triggers"   yaml:"triggers" validate:"dive"`
	CreatedAt time.Time        `json:"created_at" yaml:"-"`
	UpdatedAt time.Time        `json:"updated_at" yaml:"-"`
}

// Trigger is a configured rule of an automation. Type names the integration
// trigger (e.g. "happyforms_submit_form"), Options holds its stored settings.
type Trigger struct {
	ID           string         `json:"id"            yaml:"id"`
	AutomationID string         `json:"automation_id" yaml:"-"`
	Type         string         `json:"type"          yaml:"type" validate:"required"`
	Options      TriggerOptions `json:"options"       yaml:"options"`
}

// TriggerOptions are the stored option values of a trigger. Values arrive from
// JSON, YAML or SQL so accessors accept strings and numbers alike.
type TriggerOptions map[string]any

// String returns the option as a string, or "" when unset.
func (o TriggerOptions) String(key string) string {
	switch v := o[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Int returns the option as an integer, or def when unset or not numeric.
func (o TriggerOptions) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}

		return n
	default:
		return def
	}
}

// Times is the number of matching events required to complete the trigger.
func (o TriggerOptions) Times() int {
	times := o.Int(OptionTimes, 1)
	if times < 1 {
		return 1
	}

	return times
}

// Common option keys.
const (
	OptionPost      = "post"
	OptionPostLabel = "post_label"
	OptionTimes     = "times"

	// OptionAny is the wildcard value of post selectors.
	OptionAny = "any"
)
