package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/maillots/storefront/internal/application/cart"
)

// CartHandler handles the signed-in user's cart
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
//
//	@Summary	Get the current cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	dto.Response
//	@Router		/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	resp, err := h.cartService.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
//
//	@Summary	Add a jersey to the cart
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		request	body		cartapp.AddItemRequest	true	"Line to add"
//	@Success	200		{object}	dto.Response
//	@Failure	400		{object}	dto.Response
//	@Failure	422		{object}	dto.Response
//	@Router		/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.AddItem(c.Request.Context(), user.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateQuantity changes the quantity of a cart line
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cartapp.UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.UpdateQuantity(c.Request.Context(), user.ID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem deletes a cart line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.cartService.RemoveItem(c.Request.Context(), user.ID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddCustomization attaches a name, number or patch to a cart line
func (h *CartHandler) AddCustomization(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cartapp.AddCustomizationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.AddCustomization(c.Request.Context(), user.ID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Clear(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
