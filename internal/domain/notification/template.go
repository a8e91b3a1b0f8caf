package notification

import (
	"strings"

	"github.com/maillots/storefront/internal/domain/shared"
)

// TemplateType identifies what an email template is used for
type TemplateType string

const (
	TemplateOrderConfirmation   TemplateType = "order_confirmation"
	TemplatePaymentConfirmation TemplateType = "payment_confirmation"
	TemplateOrderShipped        TemplateType = "order_shipped"
	TemplateOrderDelivered      TemplateType = "order_delivered"
	TemplateCartReminder        TemplateType = "cart_reminder"
	TemplateStockAlert          TemplateType = "stock_alert"
	TemplatePromotion           TemplateType = "promotion"
	TemplateWelcome             TemplateType = "welcome"
)

// AllTemplateTypes lists every template type
var AllTemplateTypes = []TemplateType{
	TemplateOrderConfirmation,
	TemplatePaymentConfirmation,
	TemplateOrderShipped,
	TemplateOrderDelivered,
	TemplateCartReminder,
	TemplateStockAlert,
	TemplatePromotion,
	TemplateWelcome,
}

// IsValid checks if the type is a valid TemplateType
func (t TemplateType) IsValid() bool {
	for _, v := range AllTemplateTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Label returns the French display name
func (t TemplateType) Label() string {
	switch t {
	case TemplateOrderConfirmation:
		return "Confirmation de commande"
	case TemplatePaymentConfirmation:
		return "Confirmation de paiement"
	case TemplateOrderShipped:
		return "Commande expédiée"
	case TemplateOrderDelivered:
		return "Commande livrée"
	case TemplateCartReminder:
		return "Rappel de panier abandonné"
	case TemplateStockAlert:
		return "Alerte stock faible"
	case TemplatePromotion:
		return "Email de promotion"
	case TemplateWelcome:
		return "Email de bienvenue"
	}
	return string(t)
}

// Template is an editable email template. Subject may contain
// {order_number} or {product_name} placeholders.
type Template struct {
	shared.BaseEntity
	Type        TemplateType
	Name        string
	Subject     string
	HTMLContent string
	TextContent string
	IsActive    bool
}

// NewTemplate creates an active template
func NewTemplate(t TemplateType, name, subject, html, text string) (*Template, error) {
	if !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE_TYPE", "Unknown template type: "+string(t))
	}
	if strings.TrimSpace(subject) == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	if strings.TrimSpace(html) == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "HTML content cannot be empty")
	}
	if name == "" {
		name = t.Label()
	}
	return &Template{
		BaseEntity:  shared.NewBaseEntity(),
		Type:        t,
		Name:        name,
		Subject:     subject,
		HTMLContent: html,
		TextContent: text,
		IsActive:    true,
	}, nil
}

// FormatSubject replaces the {order_number} and {product_name} placeholders
func (t *Template) FormatSubject(orderNumber, productName string) string {
	return strings.NewReplacer(
		"{order_number}", orderNumber,
		"{product_name}", productName,
	).Replace(t.Subject)
}
