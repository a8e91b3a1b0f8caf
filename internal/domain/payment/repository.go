package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrderID finds the payment of an order or returns shared.ErrNotFound
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Payment, error)

	// FindByIDs finds several payments
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Payment, error)

	// FindAll returns every payment
	FindAll(ctx context.Context) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates a payment only if its version matches the stored one
	SaveWithLock(ctx context.Context, payment *Payment) error

	// DeleteByOrderID removes the payment of an order with its logs
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error

	// CountByStatus counts payments per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// LogRepository stores payment audit rows
type LogRepository interface {
	// Create appends an audit row
	Create(ctx context.Context, log *Log) error

	// FindByPayment lists a payment's rows, oldest first
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]Log, error)
}
