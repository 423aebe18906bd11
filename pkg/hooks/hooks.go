// Package hooks is the extension point registry shared by the engine and its
// integrations. Integrations subscribe callbacks to typed actions and filters;
// the engine and the form plugin bridge invoke them. The registry is passed
// explicitly to whoever needs it.
package hooks

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/models"
)

// DefaultPriority is the priority callbacks usually register with.
const DefaultPriority = 10

// Hook names, kept for logging and the trigger definitions.
const (
	FormSubmissionSuccess = "happyforms_submission_success"
	UserDeservesTrigger   = "user_deserves_trigger"
	TriggerLogMeta        = "user_completed_trigger_log_meta"
	LogFieldsHook         = "log_fields"
)

// ActionFunc observes an action.
type ActionFunc[A any] func(ctx context.Context, args A)

// FilterFunc receives the current value and returns the value the next
// callback sees.
type FilterFunc[T, A any] func(ctx context.Context, value T, args A) T

type entry[F any] struct {
	priority int
	seq      int
	fn       F
}

type callbacks[F any] struct {
	mu      sync.RWMutex
	seq     int
	entries []entry[F]
}

func (c *callbacks[F]) add(priority int, fn F) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries = append(c.entries, entry[F]{priority: priority, seq: c.seq, fn: fn})

	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].priority != c.entries[j].priority {
			return c.entries[i].priority < c.entries[j].priority
		}

		return c.entries[i].seq < c.entries[j].seq
	})
}

// snapshot copies the ordered callbacks so they run without holding the lock.
func (c *callbacks[F]) snapshot() []F {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fns := make([]F, len(c.entries))
	for i, e := range c.entries {
		fns[i] = e.fn
	}

	return fns
}

func (c *callbacks[F]) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Action is a notification point. Callbacks run in ascending priority, ties in
// registration order.
type Action[A any] struct {
	name string
	cbs  callbacks[ActionFunc[A]]
}

func NewAction[A any](name string) *Action[A] {
	return &Action[A]{name: name}
}

func (a *Action[A]) Name() string { return a.name }

func (a *Action[A]) Add(priority int, fn ActionFunc[A]) {
	a.cbs.add(priority, fn)
}

func (a *Action[A]) Do(ctx context.Context, args A) {
	for _, fn := range a.cbs.snapshot() {
		fn(ctx, args)
	}
}

func (a *Action[A]) Len() int { return a.cbs.count() }

// Filter is a value transformation point. Each callback receives the value
// returned by the previous one.
type Filter[T, A any] struct {
	name string
	cbs  callbacks[FilterFunc[T, A]]
}

func NewFilter[T, A any](name string) *Filter[T, A] {
	return &Filter[T, A]{name: name}
}

func (f *Filter[T, A]) Name() string { return f.name }

func (f *Filter[T, A]) Add(priority int, fn FilterFunc[T, A]) {
	f.cbs.add(priority, fn)
}

func (f *Filter[T, A]) Apply(ctx context.Context, value T, args A) T {
	for _, fn := range f.cbs.snapshot() {
		value = fn(ctx, value, args)
	}

	return value
}

func (f *Filter[T, A]) Len() int { return f.cbs.count() }

// FormSubmission is what the form plugin reports after a successful submission.
type FormSubmission struct {
	Submission json.RawMessage
	Form       models.Form
}

// DeservesArgs is the context of an eligibility decision.
type DeservesArgs struct {
	Trigger    *models.Trigger
	UserID     int64
	Event      *events.TriggerEvent
	Options    models.TriggerOptions
	Automation *models.Automation
}

// LogMetaArgs is the context of a trigger completion log.
type LogMetaArgs struct {
	Trigger    *models.Trigger
	UserID     int64
	Event      *events.TriggerEvent
	Options    models.TriggerOptions
	Automation *models.Automation
}

// LogFieldsArgs is the context of a log viewer request. Object is the trigger
// the log is attached to, nil when it no longer exists.
type LogFieldsArgs struct {
	Log    *models.Log
	Object *models.Trigger
}

// Registry holds every extension point of the engine.
type Registry struct {
	FormSubmitted *Action[FormSubmission]
	UserDeserves  *Filter[bool, DeservesArgs]
	LogMeta       *Filter[map[string]any, LogMetaArgs]
	LogFields     *Filter[map[string]models.LogField, LogFieldsArgs]
}

func NewRegistry() *Registry {
	return &Registry{
		FormSubmitted: NewAction[FormSubmission](FormSubmissionSuccess),
		UserDeserves:  NewFilter[bool, DeservesArgs](UserDeservesTrigger),
		LogMeta:       NewFilter[map[string]any, LogMetaArgs](TriggerLogMeta),
		LogFields:     NewFilter[map[string]models.LogField, LogFieldsArgs](LogFieldsHook),
	}
}
