package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByIDs finds several orders with their lines
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error)

	// FindAll walks every order with its lines, oldest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindWithoutItems returns orders that have no lines
	FindWithoutItems(ctx context.Context) ([]Order, error)

	// Save creates or updates an order and its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order only if its version matches the stored one
	SaveWithLock(ctx context.Context, order *Order) error

	// Delete removes an order and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus counts orders per fulfilment status
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// SumTotalByPaymentStatus sums order totals with the given payment status
	SumTotalByPaymentStatus(ctx context.Context, status PaymentStatus) (decimal.Decimal, error)

	// GenerateOrderNumber returns an unused order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
