package telemetry

import (
	"context"
	"errors"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Telemetry holds the signal providers of one process. With telemetry
// disabled the providers stay nil and the global no-op ones are used.
type Telemetry struct {
	Metrics  *StoreMetrics
	Profiler *Profiler

	traces *sdktrace.TracerProvider
	meters *sdkmetric.MeterProvider
	logs   *sdklog.LoggerProvider

	cfg    config.TelemetryConfig
	logger *zap.Logger
}

// Setup installs the OTLP providers globally and starts the profiler
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{cfg: cfg, logger: logger}

	var err error
	if t.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.PyroscopeEnabled,
		ServerAddress:   cfg.PyroscopeAddress,
		ApplicationName: cfg.ServiceName,
	}, logger); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return t, nil
	}

	if err := t.start(ctx); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	logger.Info("OpenTelemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("span_profiles", t.Profiler.IsEnabled()))
	return t, nil
}

func (t *Telemetry) start(ctx context.Context) (err error) {
	res, err := newResource(t.cfg.ServiceName)
	if err != nil {
		return err
	}
	c := collector{endpoint: t.cfg.CollectorEndpoint, insecure: t.cfg.Insecure, res: res}

	if t.traces, err = c.traces(ctx, t.cfg.SamplingRatio); err != nil {
		return err
	}
	if t.meters, err = c.metrics(ctx, t.cfg.MetricsInterval); err != nil {
		return err
	}
	if t.logs, err = c.logs(ctx); err != nil {
		return err
	}

	if t.Profiler.IsEnabled() {
		// tags CPU samples with the active span
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(t.traces))
	} else {
		otel.SetTracerProvider(t.traces)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetMeterProvider(t.meters)
	global.SetLoggerProvider(t.logs)

	t.Metrics, err = NewStoreMetrics(t.meters.Meter(TracerName))
	return err
}

// Enabled reports whether signals are exported
func (t *Telemetry) Enabled() bool {
	return t.cfg.Enabled
}

// ServiceName is the name spans and metrics are reported under
func (t *Telemetry) ServiceName() string {
	return t.cfg.ServiceName
}

// Logger returns base teed into the OpenTelemetry log bridge
func (t *Telemetry) Logger(base *zap.Logger) *zap.Logger {
	if t.logs == nil {
		return base
	}
	level := zapcore.InfoLevel
	if base.Core().Enabled(zapcore.DebugLevel) {
		level = zapcore.DebugLevel
	}
	return BridgeLogger(base, NewZapOTELCore(t.cfg.ServiceName, t.logs, level))
}

// InstrumentDB adds query spans when database tracing is on
func (t *Telemetry) InstrumentDB(db *gorm.DB, dbName string) error {
	return RegisterDBTracing(db, DBTracingConfig{
		Enabled:    t.cfg.Enabled && t.cfg.DBTraceEnabled,
		LogFullSQL: t.cfg.DBLogFullSQL,
		DBName:     dbName,
	}, t.logger)
}

// Shutdown flushes logs, metrics and spans in that order and stops the
// profiler. Errors are joined.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if t.logs != nil {
		errs = append(errs, t.logs.Shutdown(ctx))
	}
	if t.meters != nil {
		errs = append(errs, t.meters.Shutdown(ctx))
	}
	if t.traces != nil {
		errs = append(errs, t.traces.Shutdown(ctx))
	}
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	return errors.Join(errs...)
}
