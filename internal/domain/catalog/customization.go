package catalog

import (
	"time"
	"unicode/utf8"

	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomizationType is the kind of jersey customization
type CustomizationType string

const (
	CustomizationTypeName   CustomizationType = "name"
	CustomizationTypeNumber CustomizationType = "number"
	CustomizationTypeBadge  CustomizationType = "badge"
	CustomizationTypeColor  CustomizationType = "color"
	CustomizationTypeSize   CustomizationType = "size"
	CustomizationTypeOther  CustomizationType = "other"
)

// IsValid checks if the type is a known CustomizationType
func (t CustomizationType) IsValid() bool {
	switch t {
	case CustomizationTypeName, CustomizationTypeNumber, CustomizationTypeBadge,
		CustomizationTypeColor, CustomizationTypeSize, CustomizationTypeOther:
		return true
	}
	return false
}

// Customization is an optional paid extra on a jersey (printed name, badge, ...)
type Customization struct {
	shared.BaseEntity
	Name     string
	Type     CustomizationType
	Price    decimal.Decimal
	IsActive bool
}

// NewCustomization creates a new active customization
func NewCustomization(name string, typ CustomizationType, price decimal.Decimal) (*Customization, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMIZATION_NAME", "Customization name cannot be empty")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTOMIZATION_TYPE", "Unknown customization type")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Customization{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Type:       typ,
		Price:      price,
		IsActive:   true,
	}, nil
}

// ChangePrice updates the unit price
func (c *Customization) ChangePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	c.Price = price
	c.UpdatedAt = time.Now()
	return nil
}

// PriceFor computes the line price for a customization.
// Printed names are charged per character.
func (c *Customization) PriceFor(customText string, quantity int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	if c.Type == CustomizationTypeName && customText != "" {
		chars := decimal.NewFromInt(int64(utf8.RuneCountInString(customText)))
		return c.Price.Mul(chars).Mul(qty)
	}
	return c.Price.Mul(qty)
}
