package router

import (
	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/interfaces/http/handler"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Catalog  *handler.CatalogHandler
	Admin    *handler.AdminHandler
	Auth     *handler.AuthHandler
	Invoice  *handler.InvoiceHandler
}

// AuthGroup holds login and token routes; logout and profile need a token.
// throttle guards the login route against password guessing.
func AuthGroup(h *handler.AuthHandler, authenticate, throttle gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/login", throttle, h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", authenticate, h.Logout)
	g.GET("/me", authenticate, h.Me)
	return g
}

// CatalogGroup holds the public catalog routes
func CatalogGroup(h *handler.CatalogHandler) *DomainGroup {
	g := NewDomainGroup("catalog", "/catalog")
	g.GET("/products/:id", h.GetProduct)
	g.GET("/customizations", h.ListCustomizations)
	return g
}

// StoreGroup holds the signed-in customer routes
func StoreGroup(h Handlers, authenticate gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("store", "").Use(authenticate)

	cart := g.Group("cart", "/cart")
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PATCH("/items/:id", h.Cart.UpdateQuantity)
	cart.DELETE("/items/:id", h.Cart.RemoveItem)
	cart.POST("/items/:id/customizations", h.Cart.AddCustomization)

	orders := g.Group("orders", "/orders")
	orders.POST("", h.Checkout.PlaceOrder)
	orders.POST("/:id/cancel", h.Checkout.CancelOrder)
	orders.GET("/:id/invoice", h.Invoice.Get)
	return g
}

// AdminGroup holds the staff-only back-office routes
func AdminGroup(h Handlers, authenticate, requireStaff gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("admin", "/admin").Use(authenticate, requireStaff)
	g.GET("/stats", h.Admin.Stats)

	orders := g.Group("orders", "/orders")
	orders.PATCH("/:id", h.Admin.UpdateOrder)
	orders.POST("/bulk", h.Admin.BulkOrders)
	orders.POST("/:id/cancel", h.Admin.CancelOrder)
	orders.POST("/:id/sync-payment", h.Admin.SyncPayment)
	orders.POST("/:id/cash-received", h.Admin.CashReceived)
	orders.GET("/:id/invoice", h.Invoice.Get)

	payments := g.Group("payments", "/payments")
	payments.POST("/bulk", h.Admin.BulkPayments)
	payments.POST("/:id/validate", h.Admin.ValidatePayment)

	rec := g.Group("reconciliation", "/reconciliation")
	rec.GET("/report", h.Admin.ConsistencyReport)
	rec.POST("/fix-amounts", h.Admin.FixAmounts)
	rec.POST("/recalculate-totals", h.Admin.RecalculateTotals)

	products := g.Group("products", "/products")
	products.PUT("/:id/stock", h.Catalog.UpdateStock)

	customizations := g.Group("customizations", "/customizations")
	customizations.PUT("/:id/price", h.Catalog.UpdateCustomizationPrice)
	return g
}
