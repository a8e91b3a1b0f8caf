package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	checkoutapp "github.com/maillots/storefront/internal/application/checkout"
	"github.com/maillots/storefront/internal/application/dashboard"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/infrastructure/export"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office order, payment and reconciliation API
type AdminHandler struct {
	BaseHandler
	dashboard  *dashboard.DashboardService
	reconciler *reconciliation.Service
	checkout   *checkoutapp.CheckoutService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	dashboardService *dashboard.DashboardService,
	reconciler *reconciliation.Service,
	checkoutService *checkoutapp.CheckoutService,
) *AdminHandler {
	return &AdminHandler{
		dashboard:  dashboardService,
		reconciler: reconciler,
		checkout:   checkoutService,
	}
}

// SyncPaymentRequest forces the payment of an order to a payment status.
// Without a status the order's current one is propagated.
type SyncPaymentRequest struct {
	PaymentStatus *order.PaymentStatus `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded cash_on_delivery"`
}

// RecalculateTotalsRequest selects a RecalculateOrderTotals run
type RecalculateTotalsRequest struct {
	DryRun      bool   `json:"dry_run"`
	OrderNumber string `json:"order_number" binding:"max=50"`
}

// UpdateOrderResponse is an edited order with what the edit triggered
type UpdateOrderResponse struct {
	Order            OrderResponse `json:"order"`
	Cancelled        bool          `json:"cancelled"`
	PaymentSynced    bool          `json:"payment_synced"`
	NotificationSent bool          `json:"notification_sent"`
}

// Stats godoc
//
//	@Summary	Dashboard summary
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	dto.Response
//	@Router		/admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// UpdateOrder godoc
//
//	@Summary		Update order status, payment status or notes
//	@Description	Version must match the stored order. Cancelling also cancels the payment.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Order ID"
//	@Param			request	body		dashboard.UpdateOrderInput	true	"Changes"
//	@Success		200		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Router			/admin/orders/{id} [patch]
func (h *AdminHandler) UpdateOrder(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dashboard.UpdateOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.dashboard.UpdateOrder(c.Request.Context(), orderID, req, actorOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UpdateOrderResponse{
		Order:            toOrderResponse(result.Order),
		Cancelled:        result.Cancelled,
		PaymentSynced:    result.PaymentSynced,
		NotificationSent: result.NotificationSent,
	})
}

// BulkOrders applies one status action to several orders
func (h *AdminHandler) BulkOrders(c *gin.Context) {
	input, ok := h.bulkInput(c)
	if !ok {
		return
	}
	result, err := h.dashboard.BulkOrderAction(c.Request.Context(), input, actorOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BulkPayments applies one action to several payments
func (h *AdminHandler) BulkPayments(c *gin.Context) {
	input, ok := h.bulkInput(c)
	if !ok {
		return
	}
	result, err := h.dashboard.BulkPaymentAction(c.Request.Context(), input, actorOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *AdminHandler) bulkInput(c *gin.Context) (dashboard.BulkActionInput, bool) {
	var req dto.BulkRequest
	if !h.bindJSON(c, &req) {
		return dashboard.BulkActionInput{}, false
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid id: "+raw)
			return dashboard.BulkActionInput{}, false
		}
		ids = append(ids, id)
	}
	return dashboard.BulkActionInput{IDs: ids, Action: req.Action}, true
}

// CancelOrder cancels any order together with its payment
func (h *AdminHandler) CancelOrder(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reconciler.CancelOrderAndPayment(c.Request.Context(), orderID, actorOf(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"order_id": orderID, "cancelled": true})
}

// SyncPayment aligns the payment of an order with the order's payment status
func (h *AdminHandler) SyncPayment(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req SyncPaymentRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if req.PaymentStatus == nil {
		result, err := h.reconciler.SyncOrdersPayments(ctx, reconciliation.SyncOptions{OrderID: &orderID})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, gin.H{"order_id": orderID, "synced": result.Synced})
		return
	}

	synced, err := h.reconciler.SyncOrderPaymentStatus(ctx, orderID, *req.PaymentStatus, actorOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"order_id": orderID, "synced": synced})
}

// CashReceived settles a cash-on-delivery order
func (h *AdminHandler) CashReceived(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.checkout.MarkCashPaymentReceived(c.Request.Context(), orderID, actorOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"order":             toOrderResponse(result.Order),
		"confirmation_sent": result.ConfirmationSent,
	})
}

// ValidatePayment confirms a pending Wave transfer and marks its order paid
func (h *AdminHandler) ValidatePayment(c *gin.Context) {
	paymentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.dashboard.ValidatePayment(c.Request.Context(), paymentID, actorOf(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"payment_id": paymentID, "validated": true})
}

// ConsistencyReport godoc
//
//	@Summary		Order/payment consistency report
//	@Description	JSON by default, an xlsx workbook with format=xlsx
//	@Tags			admin
//	@Produce		json
//	@Param			format	query		string	false	"json or xlsx"
//	@Success		200		{object}	dto.Response
//	@Router			/admin/reconciliation/report [get]
func (h *AdminHandler) ConsistencyReport(c *gin.Context) {
	report, err := h.reconciler.GetStatusConsistencyReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("format") != "xlsx" {
		h.Success(c, report)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteConsistencyReport(&buf, report); err != nil {
		logger.GetGinLogger(c).Error("Failed to build consistency workbook", zap.Error(err))
		h.InternalError(c, "Failed to build report")
		return
	}
	filename := fmt.Sprintf("coherence-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// FixAmounts sets every drifted payment amount to its order total
func (h *AdminHandler) FixAmounts(c *gin.Context) {
	fixed, err := h.reconciler.FixAmountInconsistencies(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"fixed": fixed})
}

// RecalculateTotals recomputes order totals from their lines
func (h *AdminHandler) RecalculateTotals(c *gin.Context) {
	var req RecalculateTotalsRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.reconciler.RecalculateOrderTotals(c.Request.Context(), reconciliation.RecalculationOptions{
		DryRun:      req.DryRun,
		OrderNumber: req.OrderNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
