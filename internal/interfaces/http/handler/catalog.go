package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/maillots/storefront/internal/application/catalog"
)

// CatalogHandler exposes products and jersey customizations
type CatalogHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{productService: productService}
}

// GetProduct returns a product with its current price
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListCustomizations returns the active customizations and their prices
func (h *CatalogHandler) ListCustomizations(c *gin.Context) {
	resp, err := h.productService.ListCustomizations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStock godoc
//
//	@Summary		Set product stock
//	@Description	Saves the stock and alerts staff when it crosses the low-stock threshold
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Product ID"
//	@Param			request	body		catalogapp.UpdateStockRequest	true	"New stock"
//	@Success		200		{object}	dto.Response
//	@Router			/admin/products/{id}/stock [put]
func (h *CatalogHandler) UpdateStock(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.productService.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateCustomizationPrice sets a customization price and reprices open carts
func (h *CatalogHandler) UpdateCustomizationPrice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateCustomizationPriceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.productService.ReplaceCustomizationPrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
