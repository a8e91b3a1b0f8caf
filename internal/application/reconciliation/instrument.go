package reconciliation

import (
	"context"
	"time"

	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// trace opens a reconciliation span. The returned func ends it and records
// the operation duration.
func (s *Service) trace(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", operation, attrs...)
	return ctx, func(err error) {
		s.metrics.ObserveReconciliation(ctx, operation, time.Since(start))
		telemetry.EndSpan(span, err)
	}
}

// log tags entries with the request, acting user or storectl command of ctx
func (s *Service) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}
