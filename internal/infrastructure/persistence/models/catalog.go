package models

import (
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for product categories.
type CategoryModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null"`
	Slug     string `gorm:"type:varchar(120);not null;uniqueIndex"`
	IsActive bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// TeamModel is the persistence model for football teams.
type TeamModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(100);not null"`
	Slug    string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Country string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Name          string           `gorm:"type:varchar(200);not null"`
	Slug          string           `gorm:"type:varchar(220);not null;uniqueIndex"`
	Description   string           `gorm:"type:text"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index"`
	Category      *CategoryModel   `gorm:"foreignKey:CategoryID;references:ID"`
	TeamID        *uuid.UUID       `gorm:"type:uuid;index"`
	Price         decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	SalePrice     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	StockQuantity int              `gorm:"not null;default:0"`
	IsActive      bool             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		TeamID:            m.TeamID,
		Price:             m.Price,
		SalePrice:         m.SalePrice,
		StockQuantity:     m.StockQuantity,
		IsActive:          m.IsActive,
	}
	if m.Category != nil {
		p.CategoryName = m.Category.Name
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.CategoryID = p.CategoryID
	m.TeamID = p.TeamID
	m.Price = p.Price
	m.SalePrice = p.SalePrice
	m.StockQuantity = p.StockQuantity
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CustomizationModel is the persistence model for jersey customizations.
type CustomizationModel struct {
	BaseModel
	Name     string                    `gorm:"type:varchar(100);not null"`
	Type     catalog.CustomizationType `gorm:"column:customization_type;type:varchar(20);not null"`
	Price    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	IsActive bool                      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomizationModel) TableName() string {
	return "jersey_customizations"
}

// ToDomain converts the persistence model to a domain Customization entity.
func (m *CustomizationModel) ToDomain() *catalog.Customization {
	return &catalog.Customization{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Type:       m.Type,
		Price:      m.Price,
		IsActive:   m.IsActive,
	}
}

// CustomizationModelFromDomain creates a new persistence model from a domain Customization entity.
func CustomizationModelFromDomain(c *catalog.Customization) *CustomizationModel {
	m := &CustomizationModel{
		Name:     c.Name,
		Type:     c.Type,
		Price:    c.Price,
		IsActive: c.IsActive,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
