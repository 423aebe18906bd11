// Package registry keeps the trigger definitions known to the engine.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownTrigger is returned for trigger types nobody registered.
var ErrUnknownTrigger = errors.New("unknown trigger type")

// InvalidOptionsError lists the schema violations of a trigger's options.
type InvalidOptionsError struct {
	TriggerType string
	Violations  []string
}

func (e *InvalidOptionsError) Error() string {
	return fmt.Sprintf("invalid options for trigger %s: %s", e.TriggerType, strings.Join(e.Violations, "; "))
}

type Registry struct {
	logger      *slog.Logger
	hooks       *hooks.Registry
	mu          sync.RWMutex
	definitions map[string]models.TriggerDefinition
}

func NewRegistry(log *slog.Logger, hookRegistry *hooks.Registry) *Registry {
	return &Registry{
		logger:      log.With("module", "registry"),
		hooks:       hookRegistry,
		definitions: make(map[string]models.TriggerDefinition),
	}
}

// RegisterTrigger records the trigger's definition and lets it subscribe to
// the hook registry.
func (r *Registry) RegisterTrigger(trigger protocol.Trigger) {
	definition := trigger.Definition()

	r.mu.Lock()
	r.definitions[definition.Type] = definition
	r.mu.Unlock()

	trigger.Register(r.hooks)

	r.logger.Info("Registered trigger",
		"trigger", definition.Type,
		"integration", definition.Integration,
		"action", definition.Action)
}

func (r *Registry) Definition(triggerType string) (models.TriggerDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definition, ok := r.definitions[triggerType]

	return definition, ok
}

// Definitions returns all definitions ordered by trigger type.
func (r *Registry) Definitions() []models.TriggerDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definitions := make([]models.TriggerDefinition, 0, len(r.definitions))
	for _, definition := range r.definitions {
		definitions = append(definitions, definition)
	}

	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].Type < definitions[j].Type
	})

	return definitions
}

// ValidateOptions checks stored options against the trigger's options schema.
func (r *Registry) ValidateOptions(triggerType string, options models.TriggerOptions) error {
	definition, ok := r.Definition(triggerType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, triggerType)
	}

	if definition.OptionsSchema == nil {
		return nil
	}

	if options == nil {
		options = models.TriggerOptions{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(definition.OptionsSchema),
		gojsonschema.NewGoLoader(options),
	)
	if err != nil {
		return fmt.Errorf("failed to validate options for trigger %s: %w", triggerType, err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, violation.String())
	}

	return &InvalidOptionsError{TriggerType: triggerType, Violations: violations}
}

// HealthCheck reports whether any trigger is registered.
func (r *Registry) HealthCheck() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.definitions) == 0 {
		return "no triggers registered", false
	}

	return fmt.Sprintf("%d triggers registered", len(r.definitions)), true
}
