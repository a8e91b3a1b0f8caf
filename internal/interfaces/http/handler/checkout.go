package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/maillots/storefront/internal/application/checkout"
)

// CheckoutHandler turns the cart into an order and lets customers cancel theirs
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// PlaceOrderResponse is a created order with its pending payment
type PlaceOrderResponse struct {
	Order            OrderResponse    `json:"order"`
	Payment          *PaymentResponse `json:"payment,omitempty"`
	ConfirmationSent bool             `json:"confirmation_sent"`
}

// PlaceOrder godoc
//
//	@Summary		Place an order from the cart
//	@Description	Creates the order and, for online methods, a pending payment. The cart is emptied.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		checkoutapp.PlaceOrderInput	true	"Checkout form"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/orders [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req checkoutapp.PlaceOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), user.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PlaceOrderResponse{
		Order:            toOrderResponse(result.Order),
		Payment:          toPaymentResponse(result.Payment),
		ConfirmationSent: result.ConfirmationSent,
	})
}

// CancelOrder cancels one of the customer's own orders with its payment
func (h *CheckoutHandler) CancelOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.checkoutService.CancelOrder(c.Request.Context(), orderID, user); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"order_id": orderID, "cancelled": true})
}
