package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys of the store metrics
const (
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrDirection     = attribute.Key("direction")
	AttrEmailType     = attribute.Key("type")
	AttrStatus        = attribute.Key("status")
	AttrOperation     = attribute.Key("operation")
)

// Sync directions of payment_syncs_total
const (
	DirectionOrderToPayment = "order_to_payment"
	DirectionPaymentToOrder = "payment_to_order"
)

// StoreMetrics records storefront business metrics. A nil *StoreMetrics
// records nothing.
type StoreMetrics struct {
	ordersPlaced           metric.Int64Counter
	paymentSyncs           metric.Int64Counter
	emailsSent             metric.Int64Counter
	reconciliationDuration metric.Float64Histogram
}

// NewStoreMetrics registers the instruments on meter
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("meter cannot be nil")
	}
	m := &StoreMetrics{}
	var err error

	if m.ordersPlaced, err = meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Orders placed through checkout"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create orders_placed_total: %w", err)
	}
	if m.paymentSyncs, err = meter.Int64Counter("payment_syncs_total",
		metric.WithDescription("Order/payment status propagations that changed a record"),
		metric.WithUnit("{sync}")); err != nil {
		return nil, fmt.Errorf("failed to create payment_syncs_total: %w", err)
	}
	if m.emailsSent, err = meter.Int64Counter("emails_sent_total",
		metric.WithDescription("Transactional emails by template type and outcome"),
		metric.WithUnit("{email}")); err != nil {
		return nil, fmt.Errorf("failed to create emails_sent_total: %w", err)
	}
	if m.reconciliationDuration, err = meter.Float64Histogram("reconciliation_duration_seconds",
		metric.WithDescription("Duration of reconciliation operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120)); err != nil {
		return nil, fmt.Errorf("failed to create reconciliation_duration_seconds: %w", err)
	}
	return m, nil
}

// OrderPlaced counts a placed order
func (m *StoreMetrics) OrderPlaced(ctx context.Context, paymentMethod string) {
	if m == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(AttrPaymentMethod.String(paymentMethod)))
}

// PaymentSynced counts a status propagation in direction
func (m *StoreMetrics) PaymentSynced(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	m.paymentSyncs.Add(ctx, 1, metric.WithAttributes(AttrDirection.String(direction)))
}

// EmailSent counts an email attempt; status is sent, failed or skipped
func (m *StoreMetrics) EmailSent(ctx context.Context, emailType, status string) {
	if m == nil {
		return
	}
	m.emailsSent.Add(ctx, 1, metric.WithAttributes(
		AttrEmailType.String(emailType),
		AttrStatus.String(status),
	))
}

// ObserveReconciliation records how long a reconciliation operation took
func (m *StoreMetrics) ObserveReconciliation(ctx context.Context, operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.reconciliationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrOperation.String(operation)))
}
