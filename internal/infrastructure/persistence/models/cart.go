package models

import (
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// CartModel is the persistence model for the Cart aggregate root.
type CartModel struct {
	AggregateModel
	UserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []CartItemModel `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart entity.
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             make([]cart.Item, len(m.Items)),
	}
	for i := range m.Items {
		c.Items[i] = *m.Items[i].ToDomain()
	}
	return c
}

// CartModelFromDomain creates a new persistence model from a domain Cart entity.
// Items are mapped separately by the repository.
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{UserID: c.UserID}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// CartItemModel is the persistence model for a cart line.
type CartItemModel struct {
	BaseModel
	CartID         uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ProductName    string                       `gorm:"type:varchar(200);not null"`
	Size           string                       `gorm:"type:varchar(10)"`
	Quantity       int                          `gorm:"not null;default:1"`
	Price          decimal.Decimal              `gorm:"type:decimal(18,2);not null"`
	TotalPrice     decimal.Decimal              `gorm:"type:decimal(18,2);not null"`
	Customizations []CartItemCustomizationModel `gorm:"foreignKey:CartItemID;references:ID"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain cart Item.
func (m *CartItemModel) ToDomain() *cart.Item {
	item := &cart.Item{
		BaseEntity:     m.BaseModel.ToDomain(),
		CartID:         m.CartID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Size:           m.Size,
		Quantity:       m.Quantity,
		Price:          m.Price,
		TotalPrice:     m.TotalPrice,
		Customizations: make([]cart.ItemCustomization, len(m.Customizations)),
	}
	for i := range m.Customizations {
		item.Customizations[i] = m.Customizations[i].ToDomain()
	}
	return item
}

// CartItemModelFromDomain creates a new persistence model from a domain cart Item.
func CartItemModelFromDomain(i *cart.Item) *CartItemModel {
	m := &CartItemModel{
		CartID:      i.CartID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Size:        i.Size,
		Quantity:    i.Quantity,
		Price:       i.Price,
		TotalPrice:  i.TotalPrice,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// CartItemCustomizationModel is the persistence model for a customization on a cart line.
// Name, type and unit price are read from the customization definition.
type CartItemCustomizationModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	CartItemID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	CustomizationID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Customization   *CustomizationModel `gorm:"foreignKey:CustomizationID;references:ID"`
	CustomText      string              `gorm:"type:varchar(50)"`
	Quantity        int                 `gorm:"not null;default:1"`
	Price           decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CartItemCustomizationModel) TableName() string {
	return "cart_item_customizations"
}

// ToDomain converts the persistence model to a domain cart ItemCustomization.
func (m *CartItemCustomizationModel) ToDomain() cart.ItemCustomization {
	c := cart.ItemCustomization{
		ID:              m.ID,
		CartItemID:      m.CartItemID,
		CustomizationID: m.CustomizationID,
		CustomText:      m.CustomText,
		Quantity:        m.Quantity,
		Price:           m.Price,
	}
	if m.Customization != nil {
		c.Name = m.Customization.Name
		c.Type = m.Customization.Type
		c.UnitPrice = m.Customization.Price
	}
	return c
}

// CartItemCustomizationModelFromDomain creates a new persistence model from a domain cart ItemCustomization.
func CartItemCustomizationModelFromDomain(c *cart.ItemCustomization) *CartItemCustomizationModel {
	return &CartItemCustomizationModel{
		ID:              c.ID,
		CartItemID:      c.CartItemID,
		CustomizationID: c.CustomizationID,
		CustomText:      c.CustomText,
		Quantity:        c.Quantity,
		Price:           c.Price,
	}
}
