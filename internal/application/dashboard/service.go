package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// Reconciler is the order/payment consistency service
type Reconciler interface {
	SyncOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, newStatus order.PaymentStatus, updatedBy string) (bool, error)
	SyncPaymentOrderStatus(ctx context.Context, paymentID uuid.UUID, newStatus payment.Status, updatedBy string) (bool, error)
	CancelOrderAndPayment(ctx context.Context, orderID uuid.UUID, updatedBy string) error
	ValidatePaymentAndOrder(ctx context.Context, paymentID uuid.UUID, updatedBy string) error
	GetStatusConsistencyReport(ctx context.Context) (*reconciliation.ConsistencyReport, error)
}

// Notifier sends the customer emails triggered by admin actions
type Notifier interface {
	SendShippingNotification(ctx context.Context, o *order.Order) (bool, error)
	SendDeliveryNotification(ctx context.Context, o *order.Order) (bool, error)
	NotifyPaymentCompleted(ctx context.Context, p *payment.Payment) (bool, error)
}

// DashboardService backs the admin order and payment screens
type DashboardService struct {
	orderRepo   order.OrderRepository
	paymentRepo payment.PaymentRepository
	reconciler  Reconciler
	notifier    Notifier
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	orderRepo order.OrderRepository,
	paymentRepo payment.PaymentRepository,
	reconciler Reconciler,
	notifier Notifier,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		reconciler:  reconciler,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// UpdateOrder applies an admin edit. Cancelling goes through the atomic
// cancel helper; a payment status change is pushed to the payment; moving to
// shipped or delivered emails the customer.
func (s *DashboardService) UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput, updatedBy string) (*UpdateOrderResult, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if input.Version != o.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	oldStatus := o.Status
	oldPaymentStatus := o.PaymentStatus
	result := &UpdateOrderResult{}

	if input.Status != nil && *input.Status == order.StatusCancelled && oldStatus != order.StatusCancelled {
		if err := s.reconciler.CancelOrderAndPayment(ctx, o.ID, updatedBy); err != nil {
			return nil, err
		}
		if result.Order, err = s.orderRepo.FindByID(ctx, o.ID); err != nil {
			return nil, err
		}
		result.Cancelled = true
		return result, nil
	}

	if input.Status != nil {
		if err := o.SetStatus(*input.Status); err != nil {
			return nil, err
		}
	}
	if input.PaymentStatus != nil {
		if err := o.SetPaymentStatus(*input.PaymentStatus); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil {
		o.Notes = *input.Notes
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	result.Order = o

	if o.PaymentStatus != oldPaymentStatus {
		synced, err := s.reconciler.SyncOrderPaymentStatus(ctx, o.ID, o.PaymentStatus, updatedBy)
		if err != nil {
			return nil, fmt.Errorf("order saved but payment sync failed: %w", err)
		}
		result.PaymentSynced = synced
		if synced {
			s.notifyPaymentOfOrder(ctx, o.ID)
		}
	}

	if o.Status != oldStatus {
		result.NotificationSent = s.notifyStatus(ctx, o)
	}
	return result, nil
}

// BulkOrderAction sets the status of several orders. Cancellation also
// cancels each payment.
func (s *DashboardService) BulkOrderAction(ctx context.Context, input BulkActionInput, updatedBy string) (*BulkResult, error) {
	var target order.Status
	switch input.Action {
	case ActionMarkPending:
		target = order.StatusPending
	case ActionMarkProcessing:
		target = order.StatusProcessing
	case ActionMarkShipped:
		target = order.StatusShipped
	case ActionMarkDelivered:
		target = order.StatusDelivered
	case ActionMarkCancelled:
		target = order.StatusCancelled
	default:
		return nil, shared.ErrInvalidInput.Withf("Unknown order action: %s", input.Action)
	}

	orders, err := s.orderRepo.FindByIDs(ctx, input.IDs)
	if err != nil {
		return nil, err
	}
	result := &BulkResult{Action: input.Action, Requested: len(input.IDs)}
	result.Skipped = len(input.IDs) - len(orders)

	for i := range orders {
		o := &orders[i]
		if target == order.StatusCancelled {
			if err := s.reconciler.CancelOrderAndPayment(ctx, o.ID, updatedBy); err != nil {
				result.Failed = append(result.Failed, o.ID)
				continue
			}
			result.Updated++
			continue
		}
		if err := o.SetStatus(target); err != nil {
			return result, err
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			s.logger.Error("Bulk order update failed",
				zap.String("order_id", o.ID.String()),
				zap.String("action", input.Action),
				zap.Error(err))
			result.Failed = append(result.Failed, o.ID)
			continue
		}
		result.Updated++
	}

	s.logger.Info("Bulk order action applied",
		zap.String("action", input.Action),
		zap.String("updated_by", updatedBy),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// BulkPaymentAction validates Wave transfers or forces payments to completed
// or failed, pushing each change onto the order. Payments that end completed
// get a payment confirmation unless one was already sent.
func (s *DashboardService) BulkPaymentAction(ctx context.Context, input BulkActionInput, updatedBy string) (*BulkResult, error) {
	switch input.Action {
	case ActionValidateWavePayments, ActionMarkCompleted, ActionMarkFailed:
	default:
		return nil, shared.ErrInvalidInput.Withf("Unknown payment action: %s", input.Action)
	}

	payments, err := s.paymentRepo.FindByIDs(ctx, input.IDs)
	if err != nil {
		return nil, err
	}
	result := &BulkResult{Action: input.Action, Requested: len(input.IDs)}
	result.Skipped = len(input.IDs) - len(payments)

	for i := range payments {
		p := &payments[i]
		applied, err := s.applyPaymentAction(ctx, p, input.Action, updatedBy)
		if err != nil {
			s.logger.Error("Bulk payment update failed",
				zap.String("payment_id", p.ID.String()),
				zap.String("action", input.Action),
				zap.Error(err))
			result.Failed = append(result.Failed, p.ID)
			continue
		}
		if !applied {
			result.Skipped++
			continue
		}
		result.Updated++
		if input.Action != ActionMarkFailed {
			s.notifyPayment(ctx, p.ID)
		}
	}

	s.logger.Info("Bulk payment action applied",
		zap.String("action", input.Action),
		zap.String("updated_by", updatedBy),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *DashboardService) applyPaymentAction(ctx context.Context, p *payment.Payment, action, updatedBy string) (bool, error) {
	switch action {
	case ActionValidateWavePayments:
		if !p.IsWavePendingValidation() {
			return false, nil
		}
		return true, s.reconciler.ValidatePaymentAndOrder(ctx, p.ID, updatedBy)
	case ActionMarkCompleted:
		if p.Status != payment.StatusCompleted {
			p.Complete(s.now())
		}
		return s.savePaymentAndSync(ctx, p, payment.StatusCompleted, updatedBy)
	case ActionMarkFailed:
		if err := p.SetStatus(payment.StatusFailed); err != nil {
			return false, err
		}
		p.CompletedAt = nil
		return s.savePaymentAndSync(ctx, p, payment.StatusFailed, updatedBy)
	}
	return false, nil
}

func (s *DashboardService) savePaymentAndSync(ctx context.Context, p *payment.Payment, status payment.Status, updatedBy string) (bool, error) {
	if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
		return false, err
	}
	if _, err := s.reconciler.SyncPaymentOrderStatus(ctx, p.ID, status, updatedBy); err != nil {
		return false, err
	}
	return true, nil
}

// ValidatePayment validates one Wave transfer
func (s *DashboardService) ValidatePayment(ctx context.Context, paymentID uuid.UUID, updatedBy string) error {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if !p.IsWavePendingValidation() {
		return shared.ErrInvalidState.Withf("Payment is not a pending Wave transfer")
	}
	if err := s.reconciler.ValidatePaymentAndOrder(ctx, paymentID, updatedBy); err != nil {
		return err
	}
	s.notifyPayment(ctx, paymentID)
	return nil
}

// Stats summarizes orders, revenue and payment consistency
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	revenue, err := s.orderRepo.SumTotalByPaymentStatus(ctx, order.PaymentStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	payments, err := s.paymentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	report, err := s.reconciler.GetStatusConsistencyReport(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		OrdersByStatus:   byStatus,
		Revenue:          revenue,
		PaymentsByStatus: payments,
		PairsChecked:     report.PairsChecked,
		StatusMismatches: len(report.StatusMismatches),
		AmountMismatches: len(report.AmountMismatches),
	}
	for _, n := range byStatus {
		stats.TotalOrders += n
	}
	return stats, nil
}

func (s *DashboardService) notifyStatus(ctx context.Context, o *order.Order) bool {
	if s.notifier == nil {
		return false
	}
	var (
		sent bool
		err  error
	)
	switch o.Status {
	case order.StatusShipped:
		sent, err = s.notifier.SendShippingNotification(ctx, o)
	case order.StatusDelivered:
		sent, err = s.notifier.SendDeliveryNotification(ctx, o)
	default:
		return false
	}
	if err != nil {
		s.logger.Error("Failed to send order status email",
			zap.String("order_number", o.OrderNumber),
			zap.String("status", string(o.Status)),
			zap.Error(err))
		return false
	}
	return sent
}

func (s *DashboardService) notifyPaymentOfOrder(ctx context.Context, orderID uuid.UUID) {
	p, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Warn("Cannot reload payment for confirmation", zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}
	s.confirmPayment(ctx, p)
}

func (s *DashboardService) notifyPayment(ctx context.Context, paymentID uuid.UUID) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		s.logger.Warn("Cannot reload payment for confirmation", zap.String("payment_id", paymentID.String()), zap.Error(err))
		return
	}
	s.confirmPayment(ctx, p)
}

func (s *DashboardService) confirmPayment(ctx context.Context, p *payment.Payment) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.NotifyPaymentCompleted(ctx, p); err != nil {
		s.logger.Error("Failed to send payment confirmation",
			zap.String("payment_id", p.ID.String()),
			zap.Error(err))
	}
}
