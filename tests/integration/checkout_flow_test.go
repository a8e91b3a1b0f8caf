//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	checkoutapp "github.com/maillots/storefront/internal/application/checkout"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storefront struct {
	db         *TestDB
	users      *persistence.GormUserRepository
	orders     *persistence.GormOrderRepository
	payments   *persistence.GormPaymentRepository
	logs       *persistence.GormPaymentLogRepository
	carts      *persistence.GormCartRepository
	products   *persistence.GormProductRepository
	checkout   *checkoutapp.CheckoutService
	reconciler *reconciliation.Service
	jersey     *catalog.Product
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewTestDB(t)
	db := tdb.DB
	s := &storefront{
		db:       tdb,
		users:    persistence.NewGormUserRepository(db),
		orders:   persistence.NewGormOrderRepository(db),
		payments: persistence.NewGormPaymentRepository(db),
		logs:     persistence.NewGormPaymentLogRepository(db),
		carts:    persistence.NewGormCartRepository(db),
		products: persistence.NewGormProductRepository(db),
	}
	customizations := persistence.NewGormCustomizationRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	s.reconciler = reconciliation.NewService(s.orders, s.payments, s.logs, s.carts, customizations, txScope, zap.NewNop())
	s.checkout = checkoutapp.NewCheckoutService(s.orders, s.carts, s.products, txScope,
		config.ShippingConfig{
			DeliveryFee:           decimal.NewFromInt(1000),
			FreeDeliveryThreshold: decimal.NewFromInt(25000),
		}, nil, s.reconciler, zap.NewNop())

	var err error
	s.jersey, err = catalog.NewProduct("Maillot Sénégal Domicile", decimal.NewFromInt(15000), 20)
	require.NoError(t, err)
	require.NoError(t, s.products.Save(context.Background(), s.jersey))
	return s
}

func (s *storefront) customerWithCart(t *testing.T, email string, qty int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	user, err := identity.NewUser(email, "Awa", "Diop")
	require.NoError(t, err)
	require.NoError(t, s.users.Save(ctx, user))

	c, err := cart.NewCart(user.ID)
	require.NoError(t, err)
	_, err = c.AddItem(s.jersey, "L", qty)
	require.NoError(t, err)
	require.NoError(t, s.carts.Save(ctx, c))
	return user.ID
}

func (s *storefront) placeOrder(t *testing.T, userID uuid.UUID, method order.PaymentMethod) *checkoutapp.PlaceOrderResult {
	t.Helper()
	result, err := s.checkout.PlaceOrder(context.Background(), userID, checkoutapp.PlaceOrderInput{
		PaymentMethod:    method,
		ShippingFullName: "Awa Diop",
		ShippingPhone:    "+221771234567",
		ShippingAddress:  "Rue 10, Médina",
		ShippingCity:     "Dakar",
	})
	require.NoError(t, err)
	return result
}

func TestCheckoutAndReconciliationFlow(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	userID := s.customerWithCart(t, "awa@maillots.sn", 1)
	result := s.placeOrder(t, userID, order.PaymentMethodPayDunya)
	require.NotNil(t, result.Payment)
	// 15000 + 1000 delivery below the free threshold
	assert.True(t, decimal.NewFromInt(16000).Equal(result.Order.Total), result.Order.Total.String())
	assert.True(t, result.Order.Total.Equal(result.Payment.Amount))

	report, err := s.reconciler.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsChecked)
	assert.True(t, report.IsEmpty())

	// the gateway reports a completed payment
	p, err := s.payments.FindByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(payment.StatusCompleted))
	require.NoError(t, s.payments.Save(ctx, p))
	synced, err := s.reconciler.SyncPaymentOrderStatus(ctx, p.ID, payment.StatusCompleted, "")
	require.NoError(t, err)
	assert.True(t, synced)

	o, err := s.orders.FindByID(ctx, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
	assert.NotNil(t, o.PaidAt)

	// amount drift written outside the application
	require.NoError(t, s.db.DB.Exec("UPDATE payments SET amount = ? WHERE id = ?", "12000.00", p.ID).Error)
	report, err = s.reconciler.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	require.Len(t, report.AmountMismatches, 1)
	assert.True(t, decimal.NewFromInt(4000).Equal(report.AmountMismatches[0].Difference))

	fixed, err := s.reconciler.FixAmountInconsistencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	report, err = s.reconciler.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())

	logs, err := s.logs.FindByPayment(ctx, p.ID)
	require.NoError(t, err)
	actions := make([]payment.LogAction, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []payment.LogAction{
		payment.ActionPaymentCreated,
		payment.ActionStatusSynchronizedReverse,
		payment.ActionAmountAutoCorrected,
	}, actions)
}

func TestCancelOrderAndPayment_Postgres(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	userID := s.customerWithCart(t, "moussa@maillots.sn", 2)
	result := s.placeOrder(t, userID, order.PaymentMethodWaveDirect)
	require.NotNil(t, result.Payment)

	require.NoError(t, s.reconciler.CancelOrderAndPayment(ctx, result.Order.ID, "admin@maillots.sn"))

	o, err := s.orders.FindByID(ctx, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, o.Status)
	p, err := s.payments.FindByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCancelled, p.Status)

	report, err := s.reconciler.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
}

func TestCleanEmptyOrders_Postgres(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	user, err := identity.NewUser("vide@maillots.sn", "Fatou", "Sow")
	require.NoError(t, err)
	require.NoError(t, s.users.Save(ctx, user))
	empty, err := order.NewOrder("CMD20260314100000001", user.ID, order.PaymentMethodPayDunya,
		order.ShippingAddress{City: "Dakar"})
	require.NoError(t, err)
	require.NoError(t, s.orders.Save(ctx, empty))

	count, err := s.reconciler.CleanEmptyOrders(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.reconciler.CleanEmptyOrders(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, err = s.orders.FindByID(ctx, empty.ID)
	assert.Error(t, err)
}
