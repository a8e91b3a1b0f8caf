package reconciliation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type store struct {
	db             *persistence.Database
	orders         *persistence.GormOrderRepository
	payments       *persistence.GormPaymentRepository
	logs           *persistence.GormPaymentLogRepository
	carts          *persistence.GormCartRepository
	customizations *persistence.GormCustomizationRepository
	svc            *reconciliation.Service
}

func newStore(t *testing.T) *store {
	t.Helper()
	db, err := persistence.NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := &store{
		db:             db,
		orders:         persistence.NewGormOrderRepository(db.DB),
		payments:       persistence.NewGormPaymentRepository(db.DB),
		logs:           persistence.NewGormPaymentLogRepository(db.DB),
		carts:          persistence.NewGormCartRepository(db.DB),
		customizations: persistence.NewGormCustomizationRepository(db.DB),
	}
	s.svc = reconciliation.NewService(s.orders, s.payments, s.logs, s.carts, s.customizations,
		persistence.NewGormTransactionScope(db.DB), zap.NewNop())
	return s
}

// seed stores an order with one line of itemPrice, 1000 shipping, the given
// stored totals and a pending payment of paymentAmount
func (s *store) seed(t *testing.T, number string, itemPrice, storedSubtotal, paymentAmount int64) (*order.Order, *payment.Payment) {
	t.Helper()
	ctx := context.Background()

	o, err := order.NewOrder(number, uuid.New(), order.PaymentMethodPayDunya, order.ShippingAddress{City: "Dakar"})
	require.NoError(t, err)
	item, err := order.NewItem(o.ID, uuid.New(), "Maillot Lions", "L", 1, decimal.NewFromInt(itemPrice))
	require.NoError(t, err)
	o.AddItem(*item)
	o.Subtotal = decimal.NewFromInt(storedSubtotal)
	o.ShippingCost = decimal.NewFromInt(1000)
	o.Total = o.Subtotal.Add(o.ShippingCost)
	require.NoError(t, s.orders.Save(ctx, o))

	p, err := payment.NewPayment(o)
	require.NoError(t, err)
	p.Amount = decimal.NewFromInt(paymentAmount)
	require.NoError(t, s.payments.Save(ctx, p))
	return o, p
}

func TestSyncOrderPaymentStatus_CorrectsDriftThenCompletes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	o, p := s.seed(t, "CMD20240101120000001", 10000, 10000, 10000)

	synced, err := s.svc.SyncOrderPaymentStatus(ctx, o.ID, order.PaymentStatusPaid, "admin@maillots.sn")
	require.NoError(t, err)
	assert.True(t, synced)

	found, err := s.payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11000).Equal(found.Amount), "got %s", found.Amount)
	assert.Equal(t, payment.StatusCompleted, found.Status)
	assert.NotNil(t, found.CompletedAt)

	logs, err := s.logs.FindByPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, payment.ActionAmountMismatchDetected, logs[0].Action)
	assert.Equal(t, "1000.00", logs[0].Data["difference"])
	assert.Equal(t, payment.ActionAmountCorrected, logs[1].Action)
	assert.Equal(t, payment.ActionStatusSynchronized, logs[2].Action)
	assert.Equal(t, "admin@maillots.sn", logs[2].Data["updated_by"])
}

func TestSyncPaymentOrderStatus_MarksOrderPaid(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	o, p := s.seed(t, "CMD20240101120000001", 10000, 10000, 11000)

	synced, err := s.svc.SyncPaymentOrderStatus(ctx, p.ID, payment.StatusCompleted, "")
	require.NoError(t, err)
	assert.True(t, synced)

	found, err := s.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, found.PaymentStatus)
	assert.NotNil(t, found.PaidAt)

	logs, err := s.logs.FindByPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, payment.ActionStatusSynchronizedReverse, logs[0].Action)
	assert.Equal(t, reconciliation.SystemActor, logs[0].Data["updated_by"])
}

func TestFixAmountInconsistencies_IsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	o, p := s.seed(t, "CMD20240101120000001", 14000, 14000, 10000)
	s.seed(t, "CMD20240101120000002", 5000, 5000, 6000)

	report, err := s.svc.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.PairsChecked)
	require.Len(t, report.AmountMismatches, 1)
	assert.Equal(t, o.ID, report.AmountMismatches[0].OrderID)
	assert.True(t, decimal.NewFromInt(5000).Equal(report.AmountMismatches[0].Difference))

	fixed, err := s.svc.FixAmountInconsistencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	found, err := s.payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15000).Equal(found.Amount))

	fixed, err = s.svc.FixAmountInconsistencies(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)

	report, err = s.svc.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
}

func TestRecalculateOrderTotals(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	drifted, _ := s.seed(t, "CMD20240101120000001", 15000, 10000, 11000)
	s.seed(t, "CMD20240101120000002", 8000, 8000, 9000)

	t.Run("dry run reports without writing", func(t *testing.T) {
		result, err := s.svc.RecalculateOrderTotals(ctx, reconciliation.RecalculationOptions{DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Analyzed)
		assert.Equal(t, 1, result.Inconsistent)
		assert.Zero(t, result.Corrected)
		require.Len(t, result.Corrections, 1)
		assert.True(t, decimal.NewFromInt(16000).Equal(result.Corrections[0].NewTotal))

		found, err := s.orders.FindByID(ctx, drifted.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(11000).Equal(found.Total))
	})

	t.Run("applies and converges", func(t *testing.T) {
		result, err := s.svc.RecalculateOrderTotals(ctx, reconciliation.RecalculationOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Corrected)

		found, err := s.orders.FindByID(ctx, drifted.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(15000).Equal(found.Subtotal))
		assert.True(t, decimal.NewFromInt(16000).Equal(found.Total))
		assert.True(t, found.ValidateTotals())

		again, err := s.svc.RecalculateOrderTotals(ctx, reconciliation.RecalculationOptions{})
		require.NoError(t, err)
		assert.Zero(t, again.Inconsistent)
	})

	t.Run("single order by number", func(t *testing.T) {
		result, err := s.svc.RecalculateOrderTotals(ctx, reconciliation.RecalculationOptions{OrderNumber: "CMD20240101120000002"})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Analyzed)
		assert.Zero(t, result.Inconsistent)
	})
}

func TestSyncOrdersPayments_FixRepairsEveryReportedOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	paid, paidPayment := s.seed(t, "CMD20240101120000001", 10000, 10000, 11000)
	paid.MarkPaid(time.Now())
	require.NoError(t, s.orders.Save(ctx, paid))
	_, driftPayment := s.seed(t, "CMD20240101120000002", 10000, 10000, 7000)

	result, err := s.svc.SyncOrdersPayments(ctx, reconciliation.SyncOptions{Fix: true})
	require.NoError(t, err)
	assert.True(t, result.FixApplied)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Fixed)

	completed, err := s.payments.FindByID(ctx, paidPayment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, completed.Status)

	corrected, err := s.payments.FindByID(ctx, driftPayment.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11000).Equal(corrected.Amount))
	assert.Equal(t, payment.StatusPending, corrected.Status)

	report, err := s.svc.GetStatusConsistencyReport(ctx)
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
}

func TestSyncOrdersPayments_CountsOrdersNotMismatches(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	o, p := s.seed(t, "CMD20240101120000001", 10000, 10000, 7000)
	o.MarkPaid(time.Now())
	require.NoError(t, s.orders.Save(ctx, o))

	result, err := s.svc.SyncOrdersPayments(ctx, reconciliation.SyncOptions{Fix: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Report.Count())
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Fixed)

	fixed, err := s.payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, fixed.Status)
	assert.True(t, decimal.NewFromInt(11000).Equal(fixed.Amount))
}

func TestCancelOrderAndPayment(t *testing.T) {
	t.Run("cancels both sides", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		o, p := s.seed(t, "CMD20240101120000001", 10000, 10000, 11000)

		require.NoError(t, s.svc.CancelOrderAndPayment(ctx, o.ID, "admin"))

		foundOrder, err := s.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, foundOrder.Status)
		assert.Equal(t, order.PaymentStatusRefunded, foundOrder.PaymentStatus)

		foundPayment, err := s.payments.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCancelled, foundPayment.Status)

		logs, err := s.logs.FindByPayment(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, payment.ActionOrderAndPaymentCancelled, logs[0].Action)
	})

	t.Run("rolls back the order when the payment write fails", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		o, p := s.seed(t, "CMD20240101120000001", 10000, 10000, 11000)

		errPaymentWrite := errors.New("payments table unavailable")
		require.NoError(t, s.db.DB.Callback().Update().Before("gorm:update").
			Register("test:fail_payment_updates", func(tx *gorm.DB) {
				if tx.Statement.Table == "payments" {
					_ = tx.AddError(errPaymentWrite)
				}
			}))

		err := s.svc.CancelOrderAndPayment(ctx, o.ID, "admin")
		require.Error(t, err)
		assert.ErrorIs(t, err, errPaymentWrite)

		foundOrder, err := s.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, foundOrder.Status)
		assert.Equal(t, order.PaymentStatusPending, foundOrder.PaymentStatus)

		foundPayment, err := s.payments.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, foundPayment.Status)
	})
}

func TestValidatePaymentAndOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	o, p := s.seed(t, "CMD20240101120000001", 10000, 10000, 11000)

	require.NoError(t, s.svc.ValidatePaymentAndOrder(ctx, p.ID, "admin"))

	foundOrder, err := s.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, foundOrder.PaymentStatus)
	require.NotNil(t, foundOrder.PaidAt)

	foundPayment, err := s.payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, foundPayment.Status)
	require.NotNil(t, foundPayment.CompletedAt)
}

func TestCleanEmptyOrders(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	kept, _ := s.seed(t, "CMD20240101120000001", 10000, 10000, 11000)

	empty, err := order.NewOrder("CMD20240101120000002", uuid.New(), order.PaymentMethodWaveDirect, order.ShippingAddress{})
	require.NoError(t, err)
	require.NoError(t, s.orders.Save(ctx, empty))
	emptyPayment, err := payment.NewPayment(empty)
	require.NoError(t, err)
	require.NoError(t, s.payments.Save(ctx, emptyPayment))

	count, err := s.svc.CleanEmptyOrders(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, err = s.orders.FindByID(ctx, empty.ID)
	require.NoError(t, err)

	count, err = s.svc.CleanEmptyOrders(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = s.orders.FindByID(ctx, empty.ID)
	assert.Error(t, err)
	_, err = s.payments.FindByOrderID(ctx, empty.ID)
	assert.Error(t, err)
	_, err = s.orders.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestRepriceCartCustomizations(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	product, err := catalog.NewProduct("Maillot Sénégal Extérieur", decimal.NewFromInt(20000), 5)
	require.NoError(t, err)
	badge, err := catalog.NewCustomization("Badge CAN", catalog.CustomizationTypeBadge, decimal.NewFromInt(1500))
	require.NoError(t, err)
	require.NoError(t, s.customizations.Save(ctx, badge))

	userID := uuid.New()
	c, err := cart.NewCart(userID)
	require.NoError(t, err)
	item, err := c.AddItem(product, "M", 1)
	require.NoError(t, err)
	require.NoError(t, c.AddCustomization(item.ID, badge, "", 2, product))
	require.NoError(t, s.carts.Save(ctx, c))

	require.NoError(t, badge.ChangePrice(decimal.NewFromInt(2000)))
	require.NoError(t, s.customizations.Save(ctx, badge))

	repriced, err := s.svc.RepriceCartCustomizations(ctx, badge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repriced)

	found, err := s.carts.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, decimal.NewFromInt(4000).Equal(found.Items[0].Customizations[0].Price))
	assert.True(t, decimal.NewFromInt(24000).Equal(found.Items[0].TotalPrice))
}
