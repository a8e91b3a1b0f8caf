package reconciliation

import (
	"context"

	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
)

// TransactionScope provides transactional access to the order, payment and cart repositories.
// All repository operations executed inside fn share one database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() payment.PaymentRepository
	// PaymentLogRepo returns the payment audit repository scoped to the current transaction
	PaymentLogRepo() payment.LogRepository
	// CartRepo returns the cart repository scoped to the current transaction
	CartRepo() cart.CartRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// It also serves as the non-transactional repository set of the Service.
type NoOpTransactionScope struct {
	orderRepo   order.OrderRepository
	paymentRepo payment.PaymentRepository
	logRepo     payment.LogRepository
	cartRepo    cart.CartRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	paymentRepo payment.PaymentRepository,
	logRepo payment.LogRepository,
	cartRepo cart.CartRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		cartRepo:    cartRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() payment.PaymentRepository {
	return s.paymentRepo
}

// PaymentLogRepo returns the payment audit repository.
func (s *NoOpTransactionScope) PaymentLogRepo() payment.LogRepository {
	return s.logRepo
}

// CartRepo returns the cart repository.
func (s *NoOpTransactionScope) CartRepo() cart.CartRepository {
	return s.cartRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
