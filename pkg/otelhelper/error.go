package otelhelper

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ErrorEventName names the span event recorded for a failed dispatch or activation.
	ErrorEventName = "formtrigger.failure"
	ErrorTypeKey   = "formtrigger.error.type"
)

// SetError marks span as failed and records a failure event carrying attrs and
// the Go type of err. A nil error leaves the span untouched.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs = append(attrs, attribute.String(ErrorTypeKey, fmt.Sprintf("%T", err)))
	span.AddEvent(ErrorEventName, trace.WithAttributes(attrs...))
}
