package checkout

import (
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
)

// PlaceOrderInput is the checkout form
type PlaceOrderInput struct {
	PaymentMethod    order.PaymentMethod `json:"payment_method" binding:"required,oneof=paydunya wave_direct cash_on_delivery"`
	ShippingFullName string              `json:"shipping_full_name" binding:"required,max=100"`
	ShippingPhone    string              `json:"shipping_phone" binding:"required,max=20"`
	ShippingAddress  string              `json:"shipping_address" binding:"required,max=255"`
	ShippingCity     string              `json:"shipping_city" binding:"required,max=100"`
	Notes            string              `json:"notes" binding:"max=1000"`
}

// PlaceOrderResult is a created order with its payment, nil for cash on delivery
type PlaceOrderResult struct {
	Order            *order.Order
	Payment          *payment.Payment
	ConfirmationSent bool
}

// CashPaymentResult is an order settled at delivery
type CashPaymentResult struct {
	Order            *order.Order
	ConfirmationSent bool
}
