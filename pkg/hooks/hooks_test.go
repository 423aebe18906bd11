package hooks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAction_RunsByPriorityThenRegistrationOrder(t *testing.T) {
	action := NewAction[string]("test")

	var calls []string

	action.Add(20, func(_ context.Context, arg string) { calls = append(calls, "late:"+arg) })
	action.Add(DefaultPriority, func(_ context.Context, arg string) { calls = append(calls, "first:"+arg) })
	action.Add(DefaultPriority, func(_ context.Context, arg string) { calls = append(calls, "second:"+arg) })
	action.Add(1, func(_ context.Context, arg string) { calls = append(calls, "early:"+arg) })

	action.Do(context.Background(), "x")

	assert.Equal(t, []string{"early:x", "first:x", "second:x", "late:x"}, calls)
	assert.Equal(t, 4, action.Len())
	assert.Equal(t, "test", action.Name())
}

func TestAction_NoCallbacks(t *testing.T) {
	action := NewAction[int]("empty")

	assert.NotPanics(t, func() { action.Do(context.Background(), 1) })
}

func TestFilter_ChainsValues(t *testing.T) {
	filter := NewFilter[int, int]("sum")

	filter.Add(DefaultPriority, func(_ context.Context, value, arg int) int { return value + arg })
	filter.Add(5, func(_ context.Context, value, _ int) int { return value * 10 })

	// (1*10)+2
	assert.Equal(t, 12, filter.Apply(context.Background(), 1, 2))
}

func TestFilter_NoCallbacksReturnsInput(t *testing.T) {
	filter := NewFilter[bool, DeservesArgs]("deserves")

	assert.True(t, filter.Apply(context.Background(), true, DeservesArgs{}))
	assert.False(t, filter.Apply(context.Background(), false, DeservesArgs{}))
}

func TestFilter_ConcurrentAddAndApply(t *testing.T) {
	filter := NewFilter[int, struct{}]("concurrent")

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			filter.Add(DefaultPriority, func(_ context.Context, value int, _ struct{}) int { return value + 1 })
		}()

		go func() {
			defer wg.Done()
			_ = filter.Apply(context.Background(), 0, struct{}{})
		}()
	}

	wg.Wait()

	assert.Equal(t, 50, filter.Apply(context.Background(), 0, struct{}{}))
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, FormSubmissionSuccess, registry.FormSubmitted.Name())
	assert.Equal(t, UserDeservesTrigger, registry.UserDeserves.Name())
	assert.Equal(t, TriggerLogMeta, registry.LogMeta.Name())
	assert.Equal(t, LogFieldsHook, registry.LogFields.Name())
	assert.Zero(t, registry.LogFields.Len())
}
