package happyforms_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/mocks"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/dukex/formtrigger/pkg/triggers/happyforms"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition_Golden(t *testing.T) {
	trigger := happyforms.NewSubmitForm(slog.Default(), &mocks.MockDispatcher{}, nil, nil)

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	require.NoError(t, encoder.Encode(trigger.Definition()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "submit_form_definition", bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func TestDefinition_OptionsSchema(t *testing.T) {
	hookRegistry := hooks.NewRegistry()
	triggers := registry.NewRegistry(slog.Default(), hookRegistry)
	triggers.RegisterTrigger(happyforms.NewSubmitForm(slog.Default(), &mocks.MockDispatcher{}, nil, nil))

	tests := []struct {
		name    string
		options models.TriggerOptions
		valid   bool
	}{
		{name: "any form", options: models.TriggerOptions{"post": "any", "times": 1}, valid: true},
		{name: "form id as string", options: models.TriggerOptions{"post": "42", "times": "3"}, valid: true},
		{name: "form id as number", options: models.TriggerOptions{"post": 42, "post_label": "Contact"}, valid: true},
		{name: "empty options", options: models.TriggerOptions{}, valid: true},
		{name: "nil options", options: nil, valid: true},
		{name: "unknown form selector", options: models.TriggerOptions{"post": "contact"}, valid: false},
		{name: "zero times", options: models.TriggerOptions{"post": "any", "times": 0}, valid: false},
		{name: "zero times as string", options: models.TriggerOptions{"post": "any", "times": "0"}, valid: false},
		{name: "fractional times", options: models.TriggerOptions{"post": "any", "times": 1.5}, valid: false},
		{name: "times of wrong type", options: models.TriggerOptions{"times": true}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := triggers.ValidateOptions(happyforms.TriggerType, tt.options)
			if tt.valid {
				assert.NoError(t, err)

				return
			}

			var invalid *registry.InvalidOptionsError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, happyforms.TriggerType, invalid.TriggerType)
			assert.NotEmpty(t, invalid.Violations)
		})
	}
}
