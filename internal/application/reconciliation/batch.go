package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RecalculateOrderTotals rewrites subtotal and total of every order whose
// stored totals disagree with its lines. DryRun only reports.
func (s *Service) RecalculateOrderTotals(ctx context.Context, opts RecalculationOptions) (_ *RecalculationResult, err error) {
	ctx, done := s.trace(ctx, "recalculate_order_totals", attribute.Bool("dry_run", opts.DryRun))
	defer func() { done(err) }()

	orders, err := s.ordersToAnalyze(ctx, opts.OrderNumber)
	if err != nil {
		return nil, err
	}

	result := &RecalculationResult{
		DryRun:      opts.DryRun,
		Analyzed:    len(orders),
		Corrections: make([]TotalsCorrection, 0),
	}

	if !opts.DryRun {
		release, err := s.acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	for i := range orders {
		o := &orders[i]
		if o.ValidateTotals() {
			continue
		}
		result.Inconsistent++

		newSubtotal, newTotal := o.ExpectedTotals()
		correction := TotalsCorrection{
			OrderID:      o.ID,
			OrderNumber:  o.OrderNumber,
			OldSubtotal:  o.Subtotal,
			NewSubtotal:  newSubtotal,
			OldTotal:     o.Total,
			NewTotal:     newTotal,
			ShippingCost: o.ShippingCost,
			ItemCount:    len(o.Items),
		}

		if !opts.DryRun {
			o.RecalculateTotals()
			if err := s.repos.OrderRepo().Save(ctx, o); err != nil {
				s.log(ctx).Error("Failed to save recalculated order",
					zap.String("order_number", o.OrderNumber),
					zap.Error(err))
				return result, fmt.Errorf("save order %s: %w", o.OrderNumber, err)
			}
			correction.Applied = true
			result.Corrected++
		}
		result.Corrections = append(result.Corrections, correction)
	}

	s.log(ctx).Info("Order totals analyzed",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("analyzed", result.Analyzed),
		zap.Int("inconsistent", result.Inconsistent),
		zap.Int("corrected", result.Corrected))
	return result, nil
}

func (s *Service) ordersToAnalyze(ctx context.Context, orderNumber string) ([]order.Order, error) {
	if orderNumber != "" {
		o, err := s.repos.OrderRepo().FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		return []order.Order{*o}, nil
	}
	orders, err := s.repos.OrderRepo().FindAll(ctx, shared.Filter{OrderBy: "created_at", OrderDir: "asc"})
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

// SyncOrdersPayments re-syncs one order, or reports every inconsistency and
// with Fix re-syncs all reported orders inside one transaction.
func (s *Service) SyncOrdersPayments(ctx context.Context, opts SyncOptions) (_ *SyncResult, err error) {
	ctx, done := s.trace(ctx, "sync_orders_payments",
		attribute.Bool("dry_run", opts.DryRun),
		attribute.Bool("fix", opts.Fix))
	defer func() { done(err) }()

	if opts.OrderID != nil {
		return s.syncSingleOrder(ctx, *opts.OrderID, opts.DryRun)
	}

	report, err := s.GetStatusConsistencyReport(ctx)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{DryRun: opts.DryRun, Report: report}
	if opts.DryRun || !opts.Fix || report.IsEmpty() {
		return result, nil
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ids := report.OrderIDs()
	result.Total = len(ids)
	fixed := 0
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		fixed = 0
		for _, id := range ids {
			o, err := repos.OrderRepo().FindByID(ctx, id)
			if errors.Is(err, shared.ErrNotFound) {
				s.log(ctx).Warn("Reported order disappeared before fix", zap.String("order_id", id.String()))
				continue
			}
			if err != nil {
				return err
			}
			synced, err := s.syncOrderToPayment(ctx, repos, o, o.PaymentStatus, SystemActor)
			if err != nil {
				return err
			}
			if synced {
				fixed++
			}
		}
		return nil
	})
	if err != nil {
		s.log(ctx).Error("Failed to fix order/payment inconsistencies", zap.Error(err))
		return nil, err
	}

	result.FixApplied = true
	result.Fixed = fixed
	s.log(ctx).Info("Order/payment inconsistencies fixed",
		zap.Int("fixed", result.Fixed),
		zap.Int("total", result.Total))
	return result, nil
}

func (s *Service) syncSingleOrder(ctx context.Context, orderID uuid.UUID, dryRun bool) (*SyncResult, error) {
	o, err := s.repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{DryRun: dryRun, OrderID: &o.ID, OrderNumber: o.OrderNumber}
	if dryRun {
		return result, nil
	}
	synced, err := s.SyncOrderPaymentStatus(ctx, o.ID, o.PaymentStatus, SystemActor)
	if err != nil {
		return nil, err
	}
	result.Synced = synced
	result.NoPayment = !synced
	return result, nil
}

// CleanEmptyOrders deletes orders without lines along with their payment
func (s *Service) CleanEmptyOrders(ctx context.Context, dryRun bool) (_ int, err error) {
	ctx, done := s.trace(ctx, "clean_empty_orders", attribute.Bool("dry_run", dryRun))
	defer func() { done(err) }()

	orders, err := s.repos.OrderRepo().FindWithoutItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("load empty orders: %w", err)
	}
	if dryRun || len(orders) == 0 {
		return len(orders), nil
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, o := range orders {
			if err := repos.PaymentRepo().DeleteByOrderID(ctx, o.ID); err != nil {
				return fmt.Errorf("delete payment of order %s: %w", o.OrderNumber, err)
			}
			if err := repos.OrderRepo().Delete(ctx, o.ID); err != nil {
				return fmt.Errorf("delete order %s: %w", o.OrderNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log(ctx).Error("Failed to clean empty orders", zap.Error(err))
		return 0, err
	}
	s.log(ctx).Info("Empty orders deleted", zap.Int("count", len(orders)))
	return len(orders), nil
}

// RepriceCartCustomizations applies the current price of a customization to
// every cart row using it. Returns the number of rows repriced.
func (s *Service) RepriceCartCustomizations(ctx context.Context, customizationID uuid.UUID) (_ int, err error) {
	ctx, done := s.trace(ctx, "reprice_cart_customizations")
	defer func() { done(err) }()

	def, err := s.customizationRepo.FindByID(ctx, customizationID)
	if err != nil {
		return 0, err
	}
	carts, err := s.repos.CartRepo().FindByCustomization(ctx, customizationID)
	if err != nil {
		return 0, fmt.Errorf("load carts using customization %s: %w", customizationID, err)
	}

	repriced := 0
	for i := range carts {
		c := &carts[i]
		n := c.RepriceCustomization(def)
		if n == 0 {
			continue
		}
		if err := s.repos.CartRepo().Save(ctx, c); err != nil {
			return repriced, fmt.Errorf("save cart %s: %w", c.ID, err)
		}
		repriced += n
	}

	if repriced > 0 {
		s.log(ctx).Info("Cart customizations repriced",
			zap.String("customization", def.Name),
			zap.Int("rows", repriced))
	}
	return repriced, nil
}
