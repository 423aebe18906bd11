// Package protocol defines the contract between the engine and integration
// triggers.
package protocol

import (
	"context"

	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/models"
)

// Trigger is an integration trigger: it describes itself to the engine and
// subscribes its listener and filters to the hook registry.
type Trigger interface {
	Definition() models.TriggerDefinition
	Register(registry *hooks.Registry)
}

// Dispatcher is the engine's generic trigger entry point.
type Dispatcher interface {
	TriggerEvent(ctx context.Context, event events.TriggerEvent) error
}
