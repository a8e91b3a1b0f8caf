package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/notification"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrEmailSystemDisabled is recorded on logs created while sending is switched off
const ErrEmailSystemDisabled = "email system disabled"

// ErrHourlyQuotaExceeded is recorded on logs refused by the rate limiter
const ErrHourlyQuotaExceeded = "hourly email quota exceeded"

// Mailer delivers a rendered message over SMTP or any other transport
type Mailer interface {
	Send(ctx context.Context, msg notification.Message) error
}

// RateLimiter decides whether one more email may leave this hour
type RateLimiter interface {
	Allow(ctx context.Context) (bool, error)
}

// EmailService renders templates, records every attempt in the email log
// and hands messages to the Mailer.
//
// Send methods return (false, nil) when nothing was delivered for a business
// reason (switched off, missing template, SMTP failure). The reason is kept on
// the email log. An error is returned only when the log itself cannot be read
// or written.
type EmailService struct {
	cfg       config.EmailConfig
	templates notification.TemplateRepository
	logs      notification.LogRepository
	users     identity.UserRepository
	orders    order.OrderRepository
	carts     cart.CartRepository
	mailer    Mailer
	limiter   RateLimiter
	renderer  *Renderer
	metrics   *telemetry.StoreMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewEmailService creates an EmailService. The hourly quota defaults to
// counting sent logs; see SetRateLimiter.
func NewEmailService(
	cfg config.EmailConfig,
	templates notification.TemplateRepository,
	logs notification.LogRepository,
	users identity.UserRepository,
	orders order.OrderRepository,
	carts cart.CartRepository,
	mailer Mailer,
	logger *zap.Logger,
) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EmailService{
		cfg:       cfg,
		templates: templates,
		logs:      logs,
		users:     users,
		orders:    orders,
		carts:     carts,
		mailer:    mailer,
		renderer:  NewRenderer(logger),
		logger:    logger,
		now:       time.Now,
	}
	s.limiter = NewLogQuota(logs, cfg.MaxEmailsPerHour, s.clock)
	return s
}

// SetRateLimiter replaces the hourly quota check. nil disables it.
func (s *EmailService) SetRateLimiter(limiter RateLimiter) {
	s.limiter = limiter
}

// SetMetrics counts delivered and failed emails per template type
func (s *EmailService) SetMetrics(metrics *telemetry.StoreMetrics) {
	s.metrics = metrics
}

func (s *EmailService) clock() time.Time {
	return s.now()
}

type recipient struct {
	email  string
	name   string
	userID *uuid.UUID
}

type logRefs struct {
	orderID   *uuid.UUID
	paymentID *uuid.UUID
}

// SendOrderConfirmation emails the customer the content of a new order
func (s *EmailService) SendOrderConfirmation(ctx context.Context, o *order.Order) (bool, error) {
	if !s.cfg.SendOrderConfirmation {
		return false, nil
	}
	return s.sendOrderEmail(ctx, notification.TemplateOrderConfirmation, o, nil)
}

// SendShippingNotification tells the customer the order left the shop
func (s *EmailService) SendShippingNotification(ctx context.Context, o *order.Order) (bool, error) {
	if !s.cfg.SendShippingNotification {
		return false, nil
	}
	return s.sendOrderEmail(ctx, notification.TemplateOrderShipped, o, nil)
}

// SendDeliveryNotification tells the customer the order arrived
func (s *EmailService) SendDeliveryNotification(ctx context.Context, o *order.Order) (bool, error) {
	return s.sendOrderEmail(ctx, notification.TemplateOrderDelivered, o, nil)
}

// SendPaymentConfirmation emails the customer a receipt for a payment
func (s *EmailService) SendPaymentConfirmation(ctx context.Context, p *payment.Payment) (bool, error) {
	if !s.cfg.SendPaymentConfirmation {
		return false, nil
	}
	o, err := s.orders.FindByID(ctx, p.OrderID)
	if err != nil {
		return false, fmt.Errorf("failed to load order of payment %s: %w", p.ID, err)
	}
	return s.sendOrderEmail(ctx, notification.TemplatePaymentConfirmation, o, p)
}

// NotifyPaymentCompleted sends the payment confirmation once per payment.
// Payments that are not completed are ignored.
func (s *EmailService) NotifyPaymentCompleted(ctx context.Context, p *payment.Payment) (bool, error) {
	if p.Status != payment.StatusCompleted || p.CompletedAt == nil {
		return false, nil
	}
	sent, err := s.logs.ExistsSentForPayment(ctx, p.ID, notification.TemplatePaymentConfirmation)
	if err != nil {
		return false, fmt.Errorf("failed to check payment confirmation log: %w", err)
	}
	if sent {
		s.logger.Debug("Payment confirmation already sent",
			zap.String("payment_id", p.ID.String()))
		return false, nil
	}
	return s.SendPaymentConfirmation(ctx, p)
}

func (s *EmailService) sendOrderEmail(ctx context.Context, t notification.TemplateType, o *order.Order, p *payment.Payment) (bool, error) {
	tmpl, ok, err := s.activeTemplate(ctx, t)
	if err != nil || !ok {
		return false, err
	}
	user, err := s.users.FindByID(ctx, o.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load customer of order %s: %w", o.OrderNumber, err)
	}

	data := orderData(o, user)
	refs := logRefs{orderID: &o.ID}
	if p != nil {
		data["payment_amount"] = p.Amount
		data["payment_method"] = p.PaymentMethod.DisplayName()
		if p.TransactionID != "" {
			data["transaction_id"] = p.TransactionID
		}
		refs.paymentID = &p.ID
	}

	to := recipient{email: user.Email, name: user.FullName(), userID: &user.ID}
	subject := tmpl.FormatSubject(o.OrderNumber, "")
	return s.deliver(ctx, tmpl, to, subject, data, refs)
}

// SendCartReminder reminds a customer of the lines left in the cart
func (s *EmailService) SendCartReminder(ctx context.Context, user *identity.User, items []cart.Item) (bool, error) {
	if !s.cfg.SendCartReminder {
		return false, nil
	}
	tmpl, ok, err := s.activeTemplate(ctx, notification.TemplateCartReminder)
	if err != nil || !ok {
		return false, err
	}
	data := map[string]any{
		"customer_name": user.FullName(),
		"cart_items":    cartItemsData(items),
		"cart_total":    cartItemsTotal(items),
	}
	to := recipient{email: user.Email, name: user.FullName(), userID: &user.ID}
	return s.deliver(ctx, tmpl, to, tmpl.FormatSubject("", ""), data, logRefs{})
}

// SendStockAlert warns every active staff member that a product runs low.
// Returns true when at least one alert left.
func (s *EmailService) SendStockAlert(ctx context.Context, product *catalog.Product, currentStock int) (bool, error) {
	if !s.cfg.SendStockAlert {
		return false, nil
	}
	tmpl, ok, err := s.activeTemplate(ctx, notification.TemplateStockAlert)
	if err != nil || !ok {
		return false, err
	}
	staff, err := s.users.FindActiveStaff(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list staff: %w", err)
	}

	anySent := false
	subject := tmpl.FormatSubject("", product.Name)
	for i := range staff {
		admin := &staff[i]
		if admin.Email == "" {
			continue
		}
		data := map[string]any{
			"product_name":     product.Name,
			"product_price":    product.Price,
			"product_category": product.CategoryName,
			"current_stock":    currentStock,
			"admin_name":       admin.FullName(),
		}
		to := recipient{email: admin.Email, name: admin.FullName(), userID: &admin.ID}
		sent, err := s.deliver(ctx, tmpl, to, subject, data, logRefs{})
		if err != nil {
			return anySent, err
		}
		anySent = anySent || sent
	}
	return anySent, nil
}

func (s *EmailService) activeTemplate(ctx context.Context, t notification.TemplateType) (*notification.Template, bool, error) {
	tmpl, err := s.templates.FindActiveByType(ctx, t)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No active email template", zap.String("template_type", string(t)))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load %s template: %w", t, err)
	}
	return tmpl, true, nil
}

// deliver renders, logs and sends one email
func (s *EmailService) deliver(ctx context.Context, tmpl *notification.Template, to recipient, subject string, data map[string]any, refs logRefs) (bool, error) {
	html := s.renderer.RenderHTML(tmpl.HTMLContent, data)
	text := ""
	if tmpl.TextContent != "" {
		text = s.renderer.RenderText(tmpl.TextContent, data)
	}

	entry := notification.NewLog(tmpl, to.email, to.name, subject, data)
	entry.CreatedAt = s.now()
	entry.OrderID = refs.orderID
	entry.PaymentID = refs.paymentID
	entry.UserID = to.userID
	if err := s.logs.Create(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to create email log: %w", err)
	}

	log := s.logger.With(
		zap.String("template_type", string(tmpl.Type)),
		zap.String("recipient", to.email),
		zap.String("email_log_id", entry.ID.String()))

	if !s.cfg.IsActive {
		log.Warn("Email system disabled")
		return false, s.fail(ctx, entry, ErrEmailSystemDisabled)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check email quota: %w", err)
		}
		if !allowed {
			log.Warn("Hourly email quota exceeded", zap.Int("max_per_hour", s.cfg.MaxEmailsPerHour))
			return false, s.fail(ctx, entry, ErrHourlyQuotaExceeded)
		}
	}

	msg := notification.Message{
		FromName:  s.cfg.FromName,
		FromEmail: s.cfg.FromEmail,
		To:        to.email,
		ToName:    to.name,
		Subject:   subject,
		HTML:      html,
		Text:      text,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error("Failed to send email", zap.Error(err))
		return false, s.fail(ctx, entry, err.Error())
	}

	entry.MarkSent(s.now())
	s.metrics.EmailSent(ctx, string(tmpl.Type), string(notification.LogStatusSent))
	if err := s.logs.Update(ctx, entry); err != nil {
		return true, fmt.Errorf("failed to mark email log sent: %w", err)
	}
	log.Info("Email sent")
	return true, nil
}

func (s *EmailService) fail(ctx context.Context, entry *notification.Log, reason string) error {
	entry.MarkFailed(reason)
	s.metrics.EmailSent(ctx, string(entry.TemplateType), string(notification.LogStatusFailed))
	if err := s.logs.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to mark email log failed: %w", err)
	}
	return nil
}
