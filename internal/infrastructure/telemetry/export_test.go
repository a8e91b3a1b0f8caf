package telemetry

import (
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Accessors for unexported providers, used by the external test package.
func TracesOf(t *Telemetry) *sdktrace.TracerProvider { return t.traces }
func MetersOf(t *Telemetry) *sdkmetric.MeterProvider { return t.meters }
func LogsOf(t *Telemetry) *sdklog.LoggerProvider     { return t.logs }
