// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/formtrigger/pkg/forms"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/protocol"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/dukex/formtrigger/pkg/triggers/happyforms"
)

func registerNativeTriggers(
	reg *registry.Registry,
	log *slog.Logger,
	dispatcher protocol.Dispatcher,
	extractor *forms.Extractor,
	m *metrics.Metrics,
) {
	reg.RegisterTrigger(happyforms.NewSubmitForm(log, dispatcher, extractor, m))
}

// NewRegistry registers the native triggers on hookRegistry. dispatcher may
// be nil in processes that never receive form submissions.
func NewRegistry(
	log *slog.Logger,
	hookRegistry *hooks.Registry,
	dispatcher protocol.Dispatcher,
	phoneRegion string,
	m *metrics.Metrics,
) *registry.Registry {
	reg := registry.NewRegistry(log, hookRegistry)

	registerNativeTriggers(reg, log, dispatcher, forms.NewExtractor(phoneRegion), m)

	return reg
}
