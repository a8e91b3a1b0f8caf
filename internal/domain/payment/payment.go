package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the provider-side payment status
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every payment status
var AllStatuses = []Status{StatusPending, StatusCompleted, StatusFailed, StatusCancelled}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Payment is the single payment attached to an order
type Payment struct {
	shared.BaseAggregateRoot
	OrderID           uuid.UUID
	Amount            decimal.Decimal
	Status            Status
	PaymentMethod     order.PaymentMethod
	TransactionID     string
	WaveTransactionID string
	CompletedAt       *time.Time
}

// NewPayment creates a pending payment for the order total
func NewPayment(o *order.Order) (*Payment, error) {
	if o == nil || o.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Payment requires an order")
	}
	if o.Total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           o.ID,
		Amount:            o.Total,
		Status:            StatusPending,
		PaymentMethod:     o.PaymentMethod,
	}, nil
}

// SetStatus assigns any valid status
func (p *Payment) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status: "+string(status))
	}
	p.Status = status
	p.Touch()
	return nil
}

// Complete marks the payment completed at the given time
func (p *Payment) Complete(at time.Time) {
	p.Status = StatusCompleted
	p.CompletedAt = &at
	p.Touch()
}

// SetAmount overwrites the amount
func (p *Payment) SetAmount(amount decimal.Decimal) {
	p.Amount = amount
	p.Touch()
}

// IsWavePendingValidation reports whether an admin can validate the Wave transfer
func (p *Payment) IsWavePendingValidation() bool {
	return p.PaymentMethod == order.PaymentMethodWaveDirect &&
		p.Status == StatusPending &&
		p.WaveTransactionID != ""
}
