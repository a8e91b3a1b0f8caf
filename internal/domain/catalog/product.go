package catalog

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLowStockThreshold is the stock level at or below which staff are alerted
const DefaultLowStockThreshold = 5

// Product represents a jersey in the catalog
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Slug          string
	Description   string
	CategoryID    *uuid.UUID
	CategoryName  string
	TeamID        *uuid.UUID
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	StockQuantity int
	IsActive      bool
}

// NewProduct creates a new active product
func NewProduct(name string, price decimal.Decimal, stock int) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              Slugify(name),
		Price:             price,
		StockQuantity:     stock,
		IsActive:          true,
	}, nil
}

// IsOnSale reports whether a sale price below the regular price is set
func (p *Product) IsOnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price)
}

// CurrentPrice is the price a customer pays right now
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.IsOnSale() {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountPercentage returns the rounded sale discount, 0 when not on sale
func (p *Product) DiscountPercentage() int {
	if !p.IsOnSale() || p.Price.IsZero() {
		return 0
	}
	pct := p.Price.Sub(*p.SalePrice).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// SetSalePrice sets or clears (nil) the sale price
func (p *Product) SetSalePrice(salePrice *decimal.Decimal) error {
	if salePrice != nil && salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()
	return nil
}

// StockChange describes the outcome of a stock update
type StockChange struct {
	Previous int
	Current  int
	// CrossedLowStock is true when the stock went from above the threshold to at or below it
	CrossedLowStock bool
}

// SetStock replaces the stock level and reports whether the low-stock threshold was crossed
func (p *Product) SetStock(quantity, threshold int) (StockChange, error) {
	if quantity < 0 {
		return StockChange{}, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	change := StockChange{
		Previous:        p.StockQuantity,
		Current:         quantity,
		CrossedLowStock: p.StockQuantity > threshold && quantity <= threshold,
	}
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	return change, nil
}

// IsAvailable reports whether the product can be added to a cart
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.StockQuantity > 0
}

// Slugify builds a URL slug from a product name, folding accents
func Slugify(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
