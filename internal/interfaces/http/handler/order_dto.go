package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// OrderCustomizationResponse is a customization of an order line
type OrderCustomizationResponse struct {
	Name       string          `json:"name"`
	CustomText string          `json:"custom_text,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// OrderItemResponse is an order line
type OrderItemResponse struct {
	ID             uuid.UUID                    `json:"id"`
	ProductID      uuid.UUID                    `json:"product_id"`
	ProductName    string                       `json:"product_name"`
	Size           string                       `json:"size,omitempty"`
	Quantity       int                          `json:"quantity"`
	Price          decimal.Decimal              `json:"price"`
	TotalPrice     decimal.Decimal              `json:"total_price"`
	Customizations []OrderCustomizationResponse `json:"customizations,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	UserID           uuid.UUID           `json:"user_id"`
	Status           order.Status        `json:"status"`
	PaymentStatus    order.PaymentStatus `json:"payment_status"`
	PaymentMethod    order.PaymentMethod `json:"payment_method"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	Total            decimal.Decimal     `json:"total"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ShippingFullName string              `json:"shipping_full_name"`
	ShippingPhone    string              `json:"shipping_phone"`
	ShippingAddress  string              `json:"shipping_address"`
	ShippingCity     string              `json:"shipping_city"`
	Notes            string              `json:"notes,omitempty"`
	Items            []OrderItemResponse `json:"items,omitempty"`
	Version          int                 `json:"version"`
	CreatedAt        time.Time           `json:"created_at"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderID           uuid.UUID           `json:"order_id"`
	Amount            decimal.Decimal     `json:"amount"`
	Status            payment.Status      `json:"status"`
	PaymentMethod     order.PaymentMethod `json:"payment_method"`
	TransactionID     string              `json:"transaction_id,omitempty"`
	WaveTransactionID string              `json:"wave_transaction_id,omitempty"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		var customizations []OrderCustomizationResponse
		for _, row := range item.Customizations {
			customizations = append(customizations, OrderCustomizationResponse{
				Name:       row.Name,
				CustomText: row.CustomText,
				Quantity:   row.Quantity,
				Price:      row.Price,
			})
		}
		items[i] = OrderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Size:           item.Size,
			Quantity:       item.Quantity,
			Price:          item.Price,
			TotalPrice:     item.TotalPrice,
			Customizations: customizations,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		PaymentMethod:    o.PaymentMethod,
		Subtotal:         o.Subtotal,
		ShippingCost:     o.ShippingCost,
		Total:            o.Total,
		PaidAt:           o.PaidAt,
		ShippingFullName: o.ShippingAddress.FullName,
		ShippingPhone:    o.ShippingAddress.Phone,
		ShippingAddress:  o.ShippingAddress.Address,
		ShippingCity:     o.ShippingAddress.City,
		Notes:            o.Notes,
		Items:            items,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
	}
}

func toPaymentResponse(p *payment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Amount:            p.Amount,
		Status:            p.Status,
		PaymentMethod:     p.PaymentMethod,
		TransactionID:     p.TransactionID,
		WaveTransactionID: p.WaveTransactionID,
		CompletedAt:       p.CompletedAt,
	}
}
