// Package persistence provides the storage abstraction for automations and
// their completion logs.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
)

// DefaultLogLimit caps log listings without an explicit limit.
const DefaultLogLimit = 50

// MaxLogLimit is the largest page a log listing returns.
const MaxLogLimit = 500

type Persistence interface {
	Automations(ctx context.Context) ([]*models.Automation, error)
	AutomationByID(ctx context.Context, id string) (*models.Automation, error)
	SaveAutomation(ctx context.Context, automation *models.Automation) error
	DeleteAutomation(ctx context.Context, id string) error

	// TriggersByType returns the triggers of the given type whose automation
	// has the given status. An empty status matches every automation.
	TriggersByType(ctx context.Context, triggerType string, status models.AutomationStatus) ([]*models.TriggerMatch, error)
	TriggerByID(ctx context.Context, id string) (*models.TriggerMatch, error)

	SaveLog(ctx context.Context, log *models.Log) error
	LogByID(ctx context.Context, id string) (*models.Log, error)
	// Logs returns matching logs, newest first.
	Logs(ctx context.Context, filter LogFilter) ([]*models.Log, error)
	DeleteLogsBefore(ctx context.Context, before time.Time) (int64, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// LogFilter narrows a log listing. Zero values match everything.
type LogFilter struct {
	Type         models.LogType
	ObjectType   string
	AutomationID string
	UserID       int64
	Limit        int
}

// EffectiveLimit clamps Limit to (0, MaxLogLimit], defaulting to DefaultLogLimit.
func (f LogFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLogLimit
	case f.Limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return f.Limit
	}
}

// Matches reports whether log passes the filter, limit aside.
func (f LogFilter) Matches(log *models.Log) bool {
	if f.Type != "" && log.Type != f.Type {
		return false
	}

	if f.ObjectType != "" && log.ObjectType != f.ObjectType {
		return false
	}

	if f.AutomationID != "" && log.AutomationID != f.AutomationID {
		return false
	}

	return f.UserID == 0 || log.UserID == f.UserID
}
