package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SystemActor is recorded as updated_by when no user triggered the change
const SystemActor = "system"

const defaultLockTTL = 5 * time.Minute

// Service owns every order/payment/cart consistency rule and repair.
type Service struct {
	repos             TransactionalRepositories
	txScope           TransactionScope
	customizationRepo catalog.CustomizationRepository
	locker            Locker
	lockTTL           time.Duration
	metrics           *telemetry.StoreMetrics
	logger            *zap.Logger
	now               func() time.Time
}

// NewService creates a reconciliation service
func NewService(
	orderRepo order.OrderRepository,
	paymentRepo payment.PaymentRepository,
	logRepo payment.LogRepository,
	cartRepo cart.CartRepository,
	customizationRepo catalog.CustomizationRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repos:             NewNoOpTransactionScope(orderRepo, paymentRepo, logRepo, cartRepo),
		txScope:           txScope,
		customizationRepo: customizationRepo,
		lockTTL:           defaultLockTTL,
		logger:            logger,
		now:               time.Now,
	}
}

// SetLocker enables the batch repair lock
func (s *Service) SetLocker(locker Locker, ttl time.Duration) {
	s.locker = locker
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// SetMetrics records sync counts and repair durations
func (s *Service) SetMetrics(metrics *telemetry.StoreMetrics) {
	s.metrics = metrics
}

// SyncOrderPaymentStatus pushes an order payment status onto its payment.
// Returns false without error when the order has no payment. Amount drift is
// corrected first and is kept even if the status update then fails.
func (s *Service) SyncOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, newStatus order.PaymentStatus, updatedBy string) (_ bool, err error) {
	ctx, done := s.trace(ctx, "sync_order_payment_status", telemetry.OrderID(orderID))
	defer func() { done(err) }()

	o, err := s.repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	synced, err := s.syncOrderToPayment(ctx, s.repos, o, newStatus, updatedBy)
	if err != nil {
		s.log(ctx).Error("Failed to sync payment from order",
			zap.String("order_id", orderID.String()),
			zap.String("order_payment_status", string(newStatus)),
			zap.Error(err))
		return false, err
	}
	return synced, nil
}

func (s *Service) syncOrderToPayment(ctx context.Context, repos TransactionalRepositories, o *order.Order, newStatus order.PaymentStatus, updatedBy string) (bool, error) {
	p, err := repos.PaymentRepo().FindByOrderID(ctx, o.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load payment of order %s: %w", o.OrderNumber, err)
	}

	if !p.Amount.Equal(o.Total) {
		if err := s.correctAmount(ctx, repos, o, p); err != nil {
			return false, err
		}
	}

	oldStatus := p.Status
	target := payment.StatusForOrder(newStatus)
	if err := p.SetStatus(target); err != nil {
		return false, err
	}
	switch newStatus {
	case order.PaymentStatusPaid:
		if oldStatus != payment.StatusCompleted {
			now := s.now()
			p.CompletedAt = &now
		}
	case order.PaymentStatusFailed, order.PaymentStatusRefunded:
		p.CompletedAt = nil
	}

	if err := repos.PaymentRepo().Save(ctx, p); err != nil {
		return false, fmt.Errorf("save payment %s: %w", p.ID, err)
	}
	if err := s.appendLog(ctx, repos, p.ID, payment.ActionStatusSynchronized,
		fmt.Sprintf("Status synchronized: %s -> %s (order: %s)", oldStatus, target, newStatus),
		map[string]any{
			"updated_by":           actor(updatedBy),
			"order_payment_status": string(newStatus),
			"payment_status":       string(target),
			"old_payment_status":   string(oldStatus),
		}); err != nil {
		return false, err
	}
	s.metrics.PaymentSynced(ctx, telemetry.DirectionOrderToPayment)
	return true, nil
}

func (s *Service) correctAmount(ctx context.Context, repos TransactionalRepositories, o *order.Order, p *payment.Payment) error {
	difference := o.Total.Sub(p.Amount)
	if err := s.appendLog(ctx, repos, p.ID, payment.ActionAmountMismatchDetected,
		fmt.Sprintf("Amount mismatch detected: payment=%s, order=%s", money(p.Amount), money(o.Total)),
		map[string]any{
			"payment_amount": money(p.Amount),
			"order_total":    money(o.Total),
			"difference":     money(difference),
		}); err != nil {
		return err
	}

	p.SetAmount(o.Total)
	if err := repos.PaymentRepo().Save(ctx, p); err != nil {
		return fmt.Errorf("correct amount of payment %s: %w", p.ID, err)
	}
	s.log(ctx).Warn("Payment amount corrected from order total",
		zap.String("order_number", o.OrderNumber),
		zap.String("difference", money(difference)))

	return s.appendLog(ctx, repos, p.ID, payment.ActionAmountCorrected,
		fmt.Sprintf("Payment amount corrected: %s FCFA", money(p.Amount)),
		map[string]any{
			"corrected_amount": money(p.Amount),
			"order_total":      money(o.Total),
		})
}

// SyncPaymentOrderStatus pushes a payment status onto its order.
// Returns false without error when the order no longer exists.
func (s *Service) SyncPaymentOrderStatus(ctx context.Context, paymentID uuid.UUID, newStatus payment.Status, updatedBy string) (_ bool, err error) {
	ctx, done := s.trace(ctx, "sync_payment_order_status", attribute.String("payment.id", paymentID.String()))
	defer func() { done(err) }()

	p, err := s.repos.PaymentRepo().FindByID(ctx, paymentID)
	if err != nil {
		return false, err
	}
	synced, err := s.syncPaymentToOrder(ctx, s.repos, p, newStatus, updatedBy)
	if err != nil {
		s.log(ctx).Error("Failed to sync order from payment",
			zap.String("payment_id", paymentID.String()),
			zap.String("payment_status", string(newStatus)),
			zap.Error(err))
		return false, err
	}
	return synced, nil
}

func (s *Service) syncPaymentToOrder(ctx context.Context, repos TransactionalRepositories, p *payment.Payment, newStatus payment.Status, updatedBy string) (bool, error) {
	o, err := repos.OrderRepo().FindByID(ctx, p.OrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load order of payment %s: %w", p.ID, err)
	}

	oldStatus := o.PaymentStatus
	target := payment.OrderStatusFor(newStatus)
	if err := o.SetPaymentStatus(target); err != nil {
		return false, err
	}
	switch newStatus {
	case payment.StatusCompleted:
		if oldStatus != order.PaymentStatusPaid {
			now := s.now()
			o.PaidAt = &now
		}
	case payment.StatusFailed, payment.StatusCancelled:
		o.PaidAt = nil
	}

	if err := repos.OrderRepo().Save(ctx, o); err != nil {
		return false, fmt.Errorf("save order %s: %w", o.OrderNumber, err)
	}
	if err := s.appendLog(ctx, repos, p.ID, payment.ActionStatusSynchronizedReverse,
		fmt.Sprintf("Status synchronized (payment -> order): %s -> %s", newStatus, target),
		map[string]any{
			"updated_by":               actor(updatedBy),
			"payment_status":           string(newStatus),
			"order_payment_status":     string(target),
			"old_order_payment_status": string(oldStatus),
		}); err != nil {
		return false, err
	}
	s.metrics.PaymentSynced(ctx, telemetry.DirectionPaymentToOrder)
	return true, nil
}

// CancelOrderAndPayment cancels an order and its payment atomically
func (s *Service) CancelOrderAndPayment(ctx context.Context, orderID uuid.UUID, updatedBy string) (err error) {
	ctx, done := s.trace(ctx, "cancel_order_and_payment", telemetry.OrderID(orderID))
	defer func() { done(err) }()

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		o.Cancel()
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return fmt.Errorf("save cancelled order %s: %w", o.OrderNumber, err)
		}

		p, err := repos.PaymentRepo().FindByOrderID(ctx, o.ID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load payment of order %s: %w", o.OrderNumber, err)
		}
		if err := p.SetStatus(payment.StatusCancelled); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return fmt.Errorf("save cancelled payment %s: %w", p.ID, err)
		}
		return s.appendLog(ctx, repos, p.ID, payment.ActionOrderAndPaymentCancelled,
			fmt.Sprintf("Order and payment cancelled by %s", actor(updatedBy)),
			map[string]any{
				"updated_by": actor(updatedBy),
				"order_id":   o.ID.String(),
				"payment_id": p.ID.String(),
			})
	})
	if err != nil {
		s.log(ctx).Error("Failed to cancel order and payment",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return err
	}
	s.log(ctx).Info("Order and payment cancelled",
		zap.String("order_id", orderID.String()),
		zap.String("updated_by", actor(updatedBy)))
	return nil
}

// ValidatePaymentAndOrder marks a payment completed and its order paid atomically
func (s *Service) ValidatePaymentAndOrder(ctx context.Context, paymentID uuid.UUID, updatedBy string) (err error) {
	ctx, done := s.trace(ctx, "validate_payment_and_order", attribute.String("payment.id", paymentID.String()))
	defer func() { done(err) }()

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		now := s.now()
		p.Complete(now)
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return fmt.Errorf("save validated payment %s: %w", p.ID, err)
		}

		o, err := repos.OrderRepo().FindByID(ctx, p.OrderID)
		if err != nil {
			return fmt.Errorf("load order of payment %s: %w", p.ID, err)
		}
		o.MarkPaid(now)
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return fmt.Errorf("save paid order %s: %w", o.OrderNumber, err)
		}
		return s.appendLog(ctx, repos, p.ID, payment.ActionPaymentAndOrderValidated,
			fmt.Sprintf("Payment and order validated by %s", actor(updatedBy)),
			map[string]any{
				"updated_by": actor(updatedBy),
				"order_id":   o.ID.String(),
				"payment_id": p.ID.String(),
			})
	})
	if err != nil {
		s.log(ctx).Error("Failed to validate payment and order",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// GetStatusConsistencyReport scans every order having a payment
func (s *Service) GetStatusConsistencyReport(ctx context.Context) (_ *ConsistencyReport, err error) {
	ctx, done := s.trace(ctx, "status_consistency_report")
	defer func() { done(err) }()

	return s.buildReport(ctx, s.repos)
}

func (s *Service) buildReport(ctx context.Context, repos TransactionalRepositories) (*ConsistencyReport, error) {
	pairs, err := s.loadPairs(ctx, repos)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		StatusMismatches: make([]StatusMismatch, 0),
		AmountMismatches: make([]AmountMismatch, 0),
		PairsChecked:     len(pairs),
	}
	for _, pair := range pairs {
		o, p := pair.order, pair.payment
		if expected, ok := payment.ExpectedStatusForOrder(o.PaymentStatus); ok && p.Status != expected {
			report.StatusMismatches = append(report.StatusMismatches, StatusMismatch{
				OrderID:               o.ID,
				OrderNumber:           o.OrderNumber,
				OrderPaymentStatus:    o.PaymentStatus,
				PaymentStatus:         p.Status,
				ExpectedPaymentStatus: expected,
			})
		}
		if !p.Amount.Equal(o.Total) {
			report.AmountMismatches = append(report.AmountMismatches, AmountMismatch{
				OrderID:       o.ID,
				OrderNumber:   o.OrderNumber,
				OrderTotal:    o.Total,
				PaymentAmount: p.Amount,
				Difference:    o.Total.Sub(p.Amount),
			})
		}
	}
	return report, nil
}

type orderPayment struct {
	order   *order.Order
	payment *payment.Payment
}

func (s *Service) loadPairs(ctx context.Context, repos TransactionalRepositories) ([]orderPayment, error) {
	payments, err := repos.PaymentRepo().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.OrderID)
	}
	orders, err := repos.OrderRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	byID := make(map[uuid.UUID]*order.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	pairs := make([]orderPayment, 0, len(payments))
	for i := range payments {
		o, ok := byID[payments[i].OrderID]
		if !ok {
			continue
		}
		pairs = append(pairs, orderPayment{order: o, payment: &payments[i]})
	}
	return pairs, nil
}

// FixAmountInconsistencies aligns every payment amount on its order total
func (s *Service) FixAmountInconsistencies(ctx context.Context) (_ int, err error) {
	ctx, done := s.trace(ctx, "fix_amount_inconsistencies")
	defer func() { done(err) }()

	release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	pairs, err := s.loadPairs(ctx, s.repos)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, pair := range pairs {
		o, p := pair.order, pair.payment
		if p.Amount.Equal(o.Total) {
			continue
		}
		oldAmount := p.Amount
		p.SetAmount(o.Total)
		if err := s.repos.PaymentRepo().Save(ctx, p); err != nil {
			s.log(ctx).Error("Failed to fix payment amount",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err))
			return fixed, fmt.Errorf("save payment %s: %w", p.ID, err)
		}
		if err := s.appendLog(ctx, s.repos, p.ID, payment.ActionAmountAutoCorrected,
			fmt.Sprintf("Amount auto-corrected: %s -> %s FCFA", money(oldAmount), money(o.Total)),
			map[string]any{
				"old_amount":  money(oldAmount),
				"new_amount":  money(o.Total),
				"order_total": money(o.Total),
				"difference":  money(o.Total.Sub(oldAmount)),
			}); err != nil {
			return fixed, err
		}
		fixed++
	}

	if fixed > 0 {
		s.log(ctx).Info("Payment amounts fixed", zap.Int("fixed", fixed))
	}
	return fixed, nil
}

func (s *Service) appendLog(ctx context.Context, repos TransactionalRepositories, paymentID uuid.UUID, action payment.LogAction, message string, data map[string]any) error {
	if err := repos.PaymentLogRepo().Create(ctx, payment.NewLog(paymentID, action, message, data)); err != nil {
		return fmt.Errorf("write %s log: %w", action, err)
	}
	return nil
}

// acquire takes the repair lock when a locker is configured
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	lock, err := s.locker.Obtain(ctx, RepairLockKey, s.lockTTL)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log(ctx).Warn("Failed to release repair lock", zap.Error(err))
		}
	}, nil
}

func actor(updatedBy string) string {
	if updatedBy == "" {
		return SystemActor
	}
	return updatedBy
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
