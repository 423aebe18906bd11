package models

import "time"

// LogType identifies what a log entry is attached to.
type LogType string

const (
	LogTypeTrigger    LogType = "trigger"
	LogTypeAction     LogType = "action"
	LogTypeAutomation LogType = "automation"
)

// Log is an audit record written by the engine when a user completes a trigger.
type Log struct {
	ID           string         `json:"id"`
	Type         LogType        `json:"type"`
	ObjectID     string         `json:"object_id"`
	ObjectType   string         `json:"object_type"`
	AutomationID string         `json:"automation_id"`
	UserID       int64          `json:"user_id"`
	PostID       *int64         `json:"post_id,omitempty"`
	Title        string         `json:"title"`
	Meta         map[string]any `json:"meta"`
	CreatedAt    time.Time      `json:"created_at"`
}

// LogField is a display schema entry the log viewer renders for a meta key.
type LogField struct {
	Name string `json:"name"`
	Desc string `json:"desc,omitempty"`
	Type string `json:"type"`
}

// DefaultLogFields returns the fields every log entry displays.
func DefaultLogFields() map[string]LogField {
	return map[string]LogField{
		"title": {
			Name: "Title",
			Type: "text",
		},
		"user_id": {
			Name: "User",
			Type: "text",
		},
		"created_at": {
			Name: "Date",
			Type: "text",
		},
	}
}
