package payment

import (
	"time"

	"github.com/google/uuid"
)

// LogAction names an audit entry
type LogAction string

const (
	ActionAmountMismatchDetected    LogAction = "amount_mismatch_detected"
	ActionAmountCorrected           LogAction = "amount_corrected"
	ActionAmountAutoCorrected       LogAction = "amount_auto_corrected"
	ActionStatusSynchronized        LogAction = "status_synchronized"
	ActionStatusSynchronizedReverse LogAction = "status_synchronized_reverse"
	ActionOrderAndPaymentCancelled  LogAction = "order_and_payment_cancelled"
	ActionPaymentAndOrderValidated  LogAction = "payment_and_order_validated"
	ActionPaymentCreated            LogAction = "payment_created"
)

// Log is an append-only audit row attached to a payment
type Log struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	Action    LogAction
	Message   string
	Data      map[string]any
	CreatedAt time.Time
}

// NewLog creates an audit row
func NewLog(paymentID uuid.UUID, action LogAction, message string, data map[string]any) *Log {
	if data == nil {
		data = map[string]any{}
	}
	return &Log{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Action:    action,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
}
