package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checking out a cart without lines
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cart is empty")

// OrderNotifier emails order confirmations
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) (bool, error)
}

// OrderCanceller cancels an order together with its payment
type OrderCanceller interface {
	CancelOrderAndPayment(ctx context.Context, orderID uuid.UUID, updatedBy string) error
}

// CheckoutService turns carts into orders and settles or cancels them
type CheckoutService struct {
	orderRepo   order.OrderRepository
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	txScope     reconciliation.TransactionScope
	shipping    config.ShippingConfig
	notifier    OrderNotifier
	canceller   OrderCanceller
	validate    *validator.Validate
	metrics     *telemetry.StoreMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	orderRepo order.OrderRepository,
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	txScope reconciliation.TransactionScope,
	shipping config.ShippingConfig,
	notifier OrderNotifier,
	canceller OrderCanceller,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.SetTagName("binding")
	return &CheckoutService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		txScope:     txScope,
		shipping:    shipping,
		notifier:    notifier,
		canceller:   canceller,
		validate:    v,
		logger:      logger,
		now:         time.Now,
	}
}

// SetMetrics counts placed orders per payment method
func (s *CheckoutService) SetMetrics(metrics *telemetry.StoreMetrics) {
	s.metrics = metrics
}

// PlaceOrder creates an order from the user's cart in one transaction:
// lines at the current product price with their customizations, shipping
// from the configured fee and threshold, a pending payment for online
// methods, and an emptied cart. The confirmation email goes out after commit.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	products, err := s.loadProducts(ctx, c)
	if err != nil {
		return nil, err
	}

	result := &PlaceOrderResult{}
	err = s.txScope.Execute(ctx, func(repos reconciliation.TransactionalRepositories) error {
		number, err := repos.OrderRepo().GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}
		o, err := s.buildOrder(number, userID, input, c, products)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		result.Order = o

		if o.PaymentMethod.IsOnline() {
			p, err := payment.NewPayment(o)
			if err != nil {
				return err
			}
			if err := repos.PaymentRepo().Save(ctx, p); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
			entry := payment.NewLog(p.ID, payment.ActionPaymentCreated,
				fmt.Sprintf("Payment created for order %s", o.OrderNumber),
				map[string]any{"amount": p.Amount.StringFixed(2), "payment_method": string(p.PaymentMethod)})
			if err := repos.PaymentLogRepo().Create(ctx, entry); err != nil {
				return fmt.Errorf("failed to log payment creation: %w", err)
			}
			result.Payment = p
		}

		c.Clear()
		if err := repos.CartRepo().Save(ctx, c); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Checkout failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("payment_method", string(result.Order.PaymentMethod)),
		zap.String("total", result.Order.Total.StringFixed(2)))
	s.metrics.OrderPlaced(ctx, string(result.Order.PaymentMethod))
	result.ConfirmationSent = s.confirm(ctx, result.Order)
	return result, nil
}

func (s *CheckoutService) validateInput(input PlaceOrderInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fe.Field())
	}
	return shared.ErrInvalidInput.Withf("Invalid checkout fields: %s", strings.Join(fields, ", "))
}

func (s *CheckoutService) loadProducts(ctx context.Context, c *cart.Cart) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, item := range c.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
				fmt.Sprintf("Product %s is no longer available", item.ProductName))
		}
	}
	return byID, nil
}

func (s *CheckoutService) buildOrder(number string, userID uuid.UUID, input PlaceOrderInput, c *cart.Cart, products map[uuid.UUID]*catalog.Product) (*order.Order, error) {
	o, err := order.NewOrder(number, userID, input.PaymentMethod, order.ShippingAddress{
		FullName: strings.TrimSpace(input.ShippingFullName),
		Phone:    strings.TrimSpace(input.ShippingPhone),
		Address:  strings.TrimSpace(input.ShippingAddress),
		City:     strings.TrimSpace(input.ShippingCity),
	})
	if err != nil {
		return nil, err
	}
	o.Notes = input.Notes

	for _, line := range c.Items {
		product := products[line.ProductID]
		item, err := order.NewItem(o.ID, product.ID, product.Name, line.Size, line.Quantity, product.CurrentPrice())
		if err != nil {
			return nil, err
		}
		for _, row := range line.Customizations {
			item.AddCustomization(row.CustomizationID, row.Name, row.CustomText, row.Quantity, row.Price)
		}
		o.AddItem(*item)
	}

	o.RecalculateTotals()
	if err := o.SetShippingCost(s.shipping.CostFor(o.Subtotal)); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkCashPaymentReceived settles a cash-on-delivery order
func (s *CheckoutService) MarkCashPaymentReceived(ctx context.Context, orderID uuid.UUID, updatedBy string) (*CashPaymentResult, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsAwaitingCashPayment() {
		return nil, shared.ErrInvalidState.Withf("Order cannot be marked as paid on delivery")
	}
	o.MarkPaid(s.now())
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	s.logger.Info("Cash payment received",
		zap.String("order_number", o.OrderNumber),
		zap.String("updated_by", updatedBy))

	return &CashPaymentResult{Order: o, ConfirmationSent: s.confirm(ctx, o)}, nil
}

// CancelOrder cancels an order with its payment. Customers may only cancel
// their own orders; other orders look missing to them. The payment log
// records the requester's email.
func (s *CheckoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, requester *identity.User) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !requester.IsStaff && o.UserID != requester.ID {
		return shared.ErrNotFound
	}
	if !o.CanBeCancelled() {
		return shared.ErrInvalidState.Withf("Order can no longer be cancelled")
	}
	return s.canceller.CancelOrderAndPayment(ctx, orderID, requester.Email)
}

func (s *CheckoutService) confirm(ctx context.Context, o *order.Order) bool {
	if s.notifier == nil {
		return false
	}
	sent, err := s.notifier.SendOrderConfirmation(ctx, o)
	if err != nil {
		s.logger.Error("Failed to send order confirmation",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
		return false
	}
	return sent
}
