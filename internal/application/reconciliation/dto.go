package reconciliation

import (
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// StatusMismatch is an order whose payment status disagrees with its payment
type StatusMismatch struct {
	OrderID               uuid.UUID           `json:"order_id"`
	OrderNumber           string              `json:"order_number"`
	OrderPaymentStatus    order.PaymentStatus `json:"order_payment_status"`
	PaymentStatus         payment.Status      `json:"payment_status"`
	ExpectedPaymentStatus payment.Status      `json:"expected_payment_status"`
}

// AmountMismatch is an order whose total differs from its payment amount
type AmountMismatch struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	OrderTotal    decimal.Decimal `json:"order_total"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Difference    decimal.Decimal `json:"difference"`
}

// ConsistencyReport lists every order/payment pair breaking an invariant
type ConsistencyReport struct {
	StatusMismatches []StatusMismatch `json:"status_mismatches"`
	AmountMismatches []AmountMismatch `json:"amount_mismatches"`
	PairsChecked     int              `json:"pairs_checked"`
}

// IsEmpty is true when every pair is consistent
func (r *ConsistencyReport) IsEmpty() bool {
	return len(r.StatusMismatches) == 0 && len(r.AmountMismatches) == 0
}

// Count is the number of inconsistencies of both kinds
func (r *ConsistencyReport) Count() int {
	return len(r.StatusMismatches) + len(r.AmountMismatches)
}

// OrderIDs returns the distinct orders in the report, status mismatches first
func (r *ConsistencyReport) OrderIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, r.Count())
	for _, m := range r.StatusMismatches {
		if !seen[m.OrderID] {
			seen[m.OrderID] = true
			ids = append(ids, m.OrderID)
		}
	}
	for _, m := range r.AmountMismatches {
		if !seen[m.OrderID] {
			seen[m.OrderID] = true
			ids = append(ids, m.OrderID)
		}
	}
	return ids
}

// RecalculationOptions selects what RecalculateOrderTotals touches
type RecalculationOptions struct {
	DryRun      bool
	OrderNumber string
}

// TotalsCorrection describes one order whose totals drifted from its lines
type TotalsCorrection struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	OldSubtotal  decimal.Decimal `json:"old_subtotal"`
	NewSubtotal  decimal.Decimal `json:"new_subtotal"`
	OldTotal     decimal.Decimal `json:"old_total"`
	NewTotal     decimal.Decimal `json:"new_total"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	ItemCount    int             `json:"item_count"`
	Applied      bool            `json:"applied"`
}

// RecalculationResult summarizes a RecalculateOrderTotals run
type RecalculationResult struct {
	DryRun       bool               `json:"dry_run"`
	Analyzed     int                `json:"analyzed"`
	Inconsistent int                `json:"inconsistent"`
	Corrected    int                `json:"corrected"`
	Corrections  []TotalsCorrection `json:"corrections"`
}

// SyncOptions selects the SyncOrdersPayments mode
type SyncOptions struct {
	DryRun  bool
	Fix     bool
	OrderID *uuid.UUID
}

// SyncResult summarizes a SyncOrdersPayments run. Fixed and Total count
// orders, so an order with both drifts counts once.
type SyncResult struct {
	DryRun      bool               `json:"dry_run"`
	OrderID     *uuid.UUID         `json:"order_id,omitempty"`
	OrderNumber string             `json:"order_number,omitempty"`
	Synced      bool               `json:"synced"`
	NoPayment   bool               `json:"no_payment"`
	Report      *ConsistencyReport `json:"report,omitempty"`
	FixApplied  bool               `json:"fix_applied"`
	Fixed       int                `json:"fixed"`
	Total       int                `json:"total"`
}
