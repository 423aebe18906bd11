package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/formtrigger/pkg/config"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence/file"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/dukex/formtrigger/pkg/testutil"
	"github.com/dukex/formtrigger/pkg/triggers/happyforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *registry.Registry {
	reg := registry.NewRegistry(slog.Default(), hooks.NewRegistry())
	reg.RegisterTrigger(happyforms.NewSubmitForm(slog.Default(), nil, nil, nil))

	return reg
}

func TestSeedAutomations(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	automations, err := config.ParseSeed([]byte(`
automations:
  - title: Newsletter signup
    triggers:
      - type: happyforms_submit_form
        options:
          post: any
          times: 3
`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, seedAutomations(ctx, &out, store, newTestRegistry(), automations))

	stored, err := store.Automations(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].ID)
	assert.Equal(t, models.AutomationStatusActive, stored[0].Status)
	require.Len(t, stored[0].Triggers, 1)
	assert.NotEmpty(t, stored[0].Triggers[0].ID)
	assert.Contains(t, out.String(), "Seeded automation Newsletter signup")

	matches, err := store.TriggersByType(ctx, happyforms.TriggerType, models.AutomationStatusActive)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSeedAutomations_RejectsInvalidOptionsBeforeSaving(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	valid := testutil.CreateTestAutomation(testutil.CreateTestTrigger())
	invalid := testutil.CreateTestAutomation(testutil.CreateTestTrigger(
		testutil.WithOptions(models.TriggerOptions{"post": "the contact form"}),
	))

	err := seedAutomations(ctx, &bytes.Buffer{}, store, newTestRegistry(), []*models.Automation{valid, invalid})
	require.Error(t, err)

	stored, err := store.Automations(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestValidateAutomations(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	reg := newTestRegistry()

	require.NoError(t, store.SaveAutomation(ctx, testutil.CreateTestAutomation(testutil.CreateTestTrigger())))

	var out bytes.Buffer
	require.NoError(t, validateAutomations(ctx, &out, store, reg))
	assert.Contains(t, out.String(), "All triggers are valid!")

	broken := testutil.CreateTestAutomation(testutil.CreateTestTrigger(testutil.WithType("unknown_trigger")))
	require.NoError(t, store.SaveAutomation(ctx, broken))

	out.Reset()
	err := validateAutomations(ctx, &out, store, reg)
	require.ErrorIs(t, err, ErrInvalidTriggers)
	assert.Contains(t, out.String(), "Invalid triggers: 1")
}
