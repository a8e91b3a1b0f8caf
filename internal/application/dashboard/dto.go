package dashboard

import (
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// Bulk order actions
const (
	ActionMarkPending    = "mark_pending"
	ActionMarkProcessing = "mark_processing"
	ActionMarkShipped    = "mark_shipped"
	ActionMarkDelivered  = "mark_delivered"
	ActionMarkCancelled  = "mark_cancelled"
)

// Bulk payment actions
const (
	ActionValidateWavePayments = "validate_wave_payments"
	ActionMarkCompleted        = "mark_completed"
	ActionMarkFailed           = "mark_failed"
)

// UpdateOrderInput is an admin edit of an order. Version must be the one
// the admin loaded; a newer stored version fails with CONCURRENCY_CONFLICT.
type UpdateOrderInput struct {
	Status        *order.Status        `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus *order.PaymentStatus `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded cash_on_delivery"`
	Notes         *string              `json:"notes" binding:"omitempty,max=1000"`
	Version       int                  `json:"version" binding:"required,min=1"`
}

// UpdateOrderResult reports what an admin edit triggered
type UpdateOrderResult struct {
	Order            *order.Order `json:"-"`
	Cancelled        bool         `json:"cancelled"`
	PaymentSynced    bool         `json:"payment_synced"`
	NotificationSent bool         `json:"notification_sent"`
}

// BulkActionInput applies an action to several orders or payments
type BulkActionInput struct {
	IDs    []uuid.UUID `json:"ids" binding:"required,min=1,max=200"`
	Action string      `json:"action" binding:"required"`
}

// BulkResult counts what a bulk action changed
type BulkResult struct {
	Action    string      `json:"action"`
	Requested int         `json:"requested"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Failed    []uuid.UUID `json:"failed,omitempty"`
}

// Stats is the admin dashboard summary
type Stats struct {
	TotalOrders      int64                    `json:"total_orders"`
	OrdersByStatus   map[order.Status]int64   `json:"orders_by_status"`
	Revenue          decimal.Decimal          `json:"revenue"`
	PaymentsByStatus map[payment.Status]int64 `json:"payments_by_status"`
	PairsChecked     int                      `json:"pairs_checked"`
	StatusMismatches int                      `json:"status_mismatches"`
	AmountMismatches int                      `json:"amount_mismatches"`
}
