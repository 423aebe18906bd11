package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/formtrigger/pkg/otelhelper"
)

// SetupTracing installs the OTLP tracer provider when enabled. The returned
// function flushes and stops it.
func SetupTracing(ctx context.Context, enabled bool, serviceName string, logger *slog.Logger) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	tracerProvider, err := otelhelper.InitTracer(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	return func() {
		if err := tracerProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}, nil
}
