package file

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
)

// Automations returns every stored automation, oldest first.
func (fp *Persistence) Automations(_ context.Context) ([]*models.Automation, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	return fp.automations()
}

func (fp *Persistence) automations() ([]*models.Automation, error) {
	ids, err := fp.ids(automationsDir)
	if err != nil {
		return nil, err
	}

	automations := make([]*models.Automation, 0, len(ids))

	for _, id := range ids {
		var automation models.Automation

		found, err := fp.read(automationsDir, id, &automation)
		if err != nil {
			return nil, err
		}

		if found {
			automations = append(automations, &automation)
		}
	}

	sort.SliceStable(automations, func(i, j int) bool {
		return automations[i].CreatedAt.Before(automations[j].CreatedAt)
	})

	return automations, nil
}

func (fp *Persistence) AutomationByID(_ context.Context, id string) (*models.Automation, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	var automation models.Automation

	found, err := fp.read(automationsDir, id, &automation)
	if err != nil {
		return nil, persistence.NewAutomationError("AutomationByID", id, err)
	}

	if !found {
		return nil, persistence.NewAutomationError("AutomationByID", id, persistence.ErrAutomationNotFound)
	}

	return &automation, nil
}

// SaveAutomation creates or replaces an automation and stamps its triggers
// with the automation id.
func (fp *Persistence) SaveAutomation(_ context.Context, automation *models.Automation) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	now := time.Now().UTC()
	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = now
	}

	automation.UpdatedAt = now

	for _, trigger := range automation.Triggers {
		trigger.AutomationID = automation.ID
	}

	if err := fp.write(automationsDir, automation.ID, automation); err != nil {
		return persistence.NewAutomationError("SaveAutomation", automation.ID, err)
	}

	return nil
}

func (fp *Persistence) DeleteAutomation(_ context.Context, id string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	found, err := fp.remove(automationsDir, id)
	if err != nil {
		return persistence.NewAutomationError("DeleteAutomation", id, err)
	}

	if !found {
		return persistence.NewAutomationError("DeleteAutomation", id, persistence.ErrAutomationNotFound)
	}

	return nil
}

func (fp *Persistence) TriggersByType(
	_ context.Context,
	triggerType string,
	status models.AutomationStatus,
) ([]*models.TriggerMatch, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	automations, err := fp.automations()
	if err != nil {
		return nil, fmt.Errorf("failed to get automations: %w", err)
	}

	var matches []*models.TriggerMatch

	for _, automation := range automations {
		if status != "" && automation.Status != status {
			continue
		}

		for _, trigger := range automation.Triggers {
			if trigger.Type == triggerType {
				matches = append(matches, &models.TriggerMatch{Automation: automation, Trigger: trigger})
			}
		}
	}

	return matches, nil
}

func (fp *Persistence) TriggerByID(_ context.Context, id string) (*models.TriggerMatch, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	automations, err := fp.automations()
	if err != nil {
		return nil, fmt.Errorf("failed to get automations: %w", err)
	}

	for _, automation := range automations {
		for _, trigger := range automation.Triggers {
			if trigger.ID == id {
				return &models.TriggerMatch{Automation: automation, Trigger: trigger}, nil
			}
		}
	}

	return nil, fmt.Errorf("trigger %s: %w", id, persistence.ErrTriggerNotFound)
}
