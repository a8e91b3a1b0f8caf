package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// UpdateStockRequest sets the stock level of a product
type UpdateStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

// UpdateCustomizationPriceRequest sets the unit price of a customization
type UpdateCustomizationPriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Slug               string           `json:"slug"`
	CategoryName       string           `json:"category_name,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	SalePrice          *decimal.Decimal `json:"sale_price,omitempty"`
	CurrentPrice       decimal.Decimal  `json:"current_price"`
	DiscountPercentage int              `json:"discount_percentage"`
	StockQuantity      int              `json:"stock_quantity"`
	IsActive           bool             `json:"is_active"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// StockUpdateResponse reports a stock change and whether staff were alerted
type StockUpdateResponse struct {
	Product       ProductResponse `json:"product"`
	PreviousStock int             `json:"previous_stock"`
	LowStock      bool            `json:"low_stock"`
	AlertSent     bool            `json:"alert_sent"`
}

// CustomizationResponse represents a customization in API responses
type CustomizationResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

// CustomizationPriceResponse reports a price change and the cart lines repriced
type CustomizationPriceResponse struct {
	Customization  CustomizationResponse `json:"customization"`
	PreviousPrice  decimal.Decimal       `json:"previous_price"`
	RepricedOnCart int                   `json:"repriced_cart_customizations"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		CategoryName:       p.CategoryName,
		Price:              p.Price,
		SalePrice:          p.SalePrice,
		CurrentPrice:       p.CurrentPrice(),
		DiscountPercentage: p.DiscountPercentage(),
		StockQuantity:      p.StockQuantity,
		IsActive:           p.IsActive,
		UpdatedAt:          p.UpdatedAt,
	}
}

// ToCustomizationResponse converts a domain Customization to CustomizationResponse
func ToCustomizationResponse(c *catalog.Customization) CustomizationResponse {
	return CustomizationResponse{
		ID:       c.ID,
		Name:     c.Name,
		Type:     string(c.Type),
		Price:    c.Price,
		IsActive: c.IsActive,
	}
}
