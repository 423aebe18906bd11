package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanAndSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	_, span := StartSpan(context.Background(), "dispatch", attribute.String(TriggerTypeKey, "happyforms_submit_form"))
	SetError(span, errors.New("boom"), attribute.Int64(UserIDKey, 3))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "dispatch", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	assert.Contains(t, spans[0].Attributes(), attribute.String(TriggerTypeKey, "happyforms_submit_form"))

	var (
		failure sdktrace.Event
		found   bool
	)

	for _, event := range spans[0].Events() {
		if event.Name == ErrorEventName {
			failure, found = event, true
		}
	}

	require.True(t, found)
	assert.Contains(t, failure.Attributes, attribute.Int64(UserIDKey, 3))
	assert.Contains(t, failure.Attributes, attribute.String(ErrorTypeKey, "*errors.errorString"))
}

func TestSetError_NilError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer(TracerName).Start(context.Background(), "activate")
	SetError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}
