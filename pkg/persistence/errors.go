package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrAutomationNotFound indicates an automation was not found by the given identifier.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrTriggerNotFound indicates no automation owns a trigger with the given identifier.
	ErrTriggerNotFound = errors.New("trigger not found")

	// ErrLogNotFound indicates a log entry was not found by the given identifier.
	ErrLogNotFound = errors.New("log not found")
)

// AutomationError wraps automation-related errors with additional context.
type AutomationError struct {
	Op           string // Operation being performed (e.g., "AutomationByID", "Save", "Delete")
	AutomationID string
	Err          error
	Message      string
}

func (e *AutomationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for automation %s: %s (%v)", e.Op, e.AutomationID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for automation %s: %v", e.Op, e.AutomationID, e.Err)
}

func (e *AutomationError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for automation errors.
func (e *AutomationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAutomationError creates a new automation error with context.
func NewAutomationError(op, automationID string, err error) *AutomationError {
	return &AutomationError{
		Op:           op,
		AutomationID: automationID,
		Err:          err,
	}
}

// IsAutomationNotFound checks if an error indicates an automation was not found.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}

// IsTriggerNotFound checks if an error indicates a trigger was not found.
func IsTriggerNotFound(err error) bool {
	return errors.Is(err, ErrTriggerNotFound)
}

// IsLogNotFound checks if an error indicates a log entry was not found.
func IsLogNotFound(err error) bool {
	return errors.Is(err, ErrLogNotFound)
}
