package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/application/invoice"
)

// InvoiceHandler serves order invoices as HTML or PDF
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoice.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Get godoc
//
//	@Summary		Download an order invoice
//	@Description	Customers get their own orders only; staff get any order.
//	@Tags			orders
//	@Produce		html
//	@Produce		application/pdf
//	@Param			id		path		string	true	"Order ID"
//	@Param			format	query		string	false	"html (default) or pdf"
//	@Success		200		{file}		file
//	@Failure		404		{object}	dto.Response
//	@Failure		503		{object}	dto.Response
//	@Router			/orders/{id}/invoice [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "html")
	if format != "html" && format != "pdf" {
		h.BadRequest(c, "format must be html or pdf")
		return
	}
	if format == "pdf" && !h.invoiceService.PDFEnabled() {
		h.HandleError(c, invoice.ErrPDFUnavailable)
		return
	}

	ctx := c.Request.Context()
	data, err := h.invoiceService.BuildFor(ctx, orderID, user.ID, user.IsStaff)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if format == "pdf" {
		pdf, err := h.invoiceService.RenderPDF(ctx, data)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+data.Filename("pdf")+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
		return
	}

	page, err := h.invoiceService.RenderHTML(data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
