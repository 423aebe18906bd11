package happyforms

import (
	"context"
	"log/slog"
	"maps"
	"strings"

	"github.com/dukex/formtrigger/pkg/auth"
	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/forms"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/protocol"
)

// SubmitForm is the "User submits a form" trigger.
type SubmitForm struct {
	logger     *slog.Logger
	dispatcher protocol.Dispatcher
	extractor  *forms.Extractor
	metrics    *metrics.Metrics
}

// NewSubmitForm creates the trigger. m may be nil.
func NewSubmitForm(
	log *slog.Logger,
	dispatcher protocol.Dispatcher,
	extractor *forms.Extractor,
	m *metrics.Metrics,
) *SubmitForm {
	if extractor == nil {
		extractor = forms.NewExtractor("")
	}

	return &SubmitForm{
		logger:     log.With("module", "happyforms", "trigger", TriggerType),
		dispatcher: dispatcher,
		extractor:  extractor,
		metrics:    m,
	}
}

// Register subscribes the listener and the engine filters.
func (s *SubmitForm) Register(registry *hooks.Registry) {
	registry.FormSubmitted.Add(hooks.DefaultPriority, s.Listener)
	registry.UserDeserves.Add(hooks.DefaultPriority, s.UserDeserves)
	registry.LogMeta.Add(hooks.DefaultPriority, s.LogMeta)
	registry.LogFields.Add(hooks.DefaultPriority, s.LogFields)
}

// Listener turns a successful form submission of a logged in user into a
// trigger event. Anonymous submissions are ignored and dispatch failures are
// only logged.
func (s *SubmitForm) Listener(ctx context.Context, submission hooks.FormSubmission) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		s.metrics.SubmissionSkipped(metrics.ReasonAnonymous)
		s.logger.DebugContext(ctx, "Skipping anonymous form submission", "form_id", submission.Form.ID)

		return
	}

	formID := absint(submission.Form.ID)
	fields := s.extractor.Values(submission.Submission, submission.Form)

	event := events.NewTriggerEvent(TriggerType, userID, formID, fields)
	event.PostTitle = strings.TrimSpace(submission.Form.Title)

	if err := s.dispatcher.TriggerEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to dispatch form submission",
			"user_id", userID,
			"form_id", formID,
			"error", err)

		return
	}

	s.logger.DebugContext(ctx, "Dispatched form submission",
		"event_id", event.ID,
		"user_id", userID,
		"form_id", formID,
		"fields", len(fields))
}

// UserDeserves rejects events without a form id and events of a form other
// than the configured one. Otherwise the incoming decision is kept.
func (s *SubmitForm) UserDeserves(ctx context.Context, deserves bool, args hooks.DeservesArgs) bool {
	if args.Trigger == nil || args.Trigger.Type != TriggerType {
		return deserves
	}

	if args.Event == nil || !args.Event.HasPostID() {
		s.logger.DebugContext(ctx, "Event has no form id", "trigger_id", args.Trigger.ID)

		return false
	}

	if !forms.PostMatches(*args.Event.PostID, args.Options.String(models.OptionPost)) {
		s.logger.DebugContext(ctx, "Form does not match trigger",
			"trigger_id", args.Trigger.ID,
			"form_id", *args.Event.PostID,
			"expected", args.Options.String(models.OptionPost))

		return false
	}

	return deserves
}

// LogMeta stores the submitted fields with the completion log.
func (s *SubmitForm) LogMeta(_ context.Context, meta map[string]any, args hooks.LogMetaArgs) map[string]any {
	if args.Trigger == nil || args.Trigger.Type != TriggerType {
		return meta
	}

	fields := make(map[string]string)
	if args.Event != nil {
		maps.Copy(fields, args.Event.FormFields)
	}

	enriched := make(map[string]any, len(meta)+1)
	maps.Copy(enriched, meta)
	enriched[FormFieldsKey] = fields

	return enriched
}

// LogFields exposes the submitted fields in the log viewer of this trigger's
// logs.
func (s *SubmitForm) LogFields(
	_ context.Context,
	fields map[string]models.LogField,
	args hooks.LogFieldsArgs,
) map[string]models.LogField {
	if args.Log == nil || args.Log.Type != models.LogTypeTrigger {
		return fields
	}

	if args.Object == nil || args.Object.Type != TriggerType {
		return fields
	}

	enriched := make(map[string]models.LogField, len(fields)+1)
	maps.Copy(enriched, fields)
	enriched[FormFieldsKey] = models.LogField{
		Name: "Fields Submitted",
		Desc: "Information about the fields values sent on this form submission.",
		Type: "text",
	}

	return enriched
}

func absint(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
