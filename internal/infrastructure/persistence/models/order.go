package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber      string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status           order.Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus    order.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod    order.PaymentMethod `gorm:"type:varchar(20);not null;default:'paydunya'"`
	Subtotal         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCost     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAt           *time.Time
	ShippingFullName string           `gorm:"type:varchar(200)"`
	ShippingPhone    string           `gorm:"type:varchar(20)"`
	ShippingAddress  string           `gorm:"type:text"`
	ShippingCity     string           `gorm:"type:varchar(100)"`
	Notes            string           `gorm:"type:text"`
	Items            []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		PaymentMethod:     m.PaymentMethod,
		Subtotal:          m.Subtotal,
		ShippingCost:      m.ShippingCost,
		Total:             m.Total,
		PaidAt:            m.PaidAt,
		ShippingAddress: order.ShippingAddress{
			FullName: m.ShippingFullName,
			Phone:    m.ShippingPhone,
			Address:  m.ShippingAddress,
			City:     m.ShippingCity,
		},
		Notes: m.Notes,
		Items: make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = *m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
// Items are mapped separately by the repository.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.UserID = o.UserID
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.PaymentMethod = o.PaymentMethod
	m.Subtotal = o.Subtotal
	m.ShippingCost = o.ShippingCost
	m.Total = o.Total
	m.PaidAt = o.PaidAt
	m.ShippingFullName = o.ShippingAddress.FullName
	m.ShippingPhone = o.ShippingAddress.Phone
	m.ShippingAddress = o.ShippingAddress.Address
	m.ShippingCity = o.ShippingAddress.City
	m.Notes = o.Notes
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID             uuid.UUID                     `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID                     `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID                     `gorm:"type:uuid;not null;index"`
	ProductName    string                        `gorm:"type:varchar(200);not null"`
	Size           string                        `gorm:"type:varchar(10)"`
	Quantity       int                           `gorm:"not null"`
	Price          decimal.Decimal               `gorm:"type:decimal(18,2);not null"`
	TotalPrice     decimal.Decimal               `gorm:"type:decimal(18,2);not null"`
	Customizations []OrderItemCustomizationModel `gorm:"foreignKey:OrderItemID;references:ID"`
	CreatedAt      time.Time                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order Item.
func (m *OrderItemModel) ToDomain() *order.Item {
	item := &order.Item{
		ID:             m.ID,
		OrderID:        m.OrderID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Size:           m.Size,
		Quantity:       m.Quantity,
		Price:          m.Price,
		TotalPrice:     m.TotalPrice,
		Customizations: make([]order.ItemCustomization, len(m.Customizations)),
		CreatedAt:      m.CreatedAt,
	}
	for i := range m.Customizations {
		item.Customizations[i] = m.Customizations[i].ToDomain()
	}
	return item
}

// OrderItemModelFromDomain creates a new persistence model from a domain order Item.
func OrderItemModelFromDomain(i *order.Item) *OrderItemModel {
	return &OrderItemModel{
		ID:          i.ID,
		OrderID:     i.OrderID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Size:        i.Size,
		Quantity:    i.Quantity,
		Price:       i.Price,
		TotalPrice:  i.TotalPrice,
		CreatedAt:   i.CreatedAt,
	}
}

// OrderItemCustomizationModel is the persistence model for a customization on an order line.
type OrderItemCustomizationModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomizationID uuid.UUID       `gorm:"type:uuid;not null"`
	Name            string          `gorm:"type:varchar(100)"`
	CustomText      string          `gorm:"type:varchar(50)"`
	Quantity        int             `gorm:"not null;default:1"`
	Price           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemCustomizationModel) TableName() string {
	return "order_item_customizations"
}

// ToDomain converts the persistence model to a domain order ItemCustomization.
func (m *OrderItemCustomizationModel) ToDomain() order.ItemCustomization {
	return order.ItemCustomization{
		ID:              m.ID,
		OrderItemID:     m.OrderItemID,
		CustomizationID: m.CustomizationID,
		Name:            m.Name,
		CustomText:      m.CustomText,
		Quantity:        m.Quantity,
		Price:           m.Price,
	}
}

// OrderItemCustomizationModelFromDomain creates a new persistence model from a domain order ItemCustomization.
func OrderItemCustomizationModelFromDomain(c *order.ItemCustomization) *OrderItemCustomizationModel {
	return &OrderItemCustomizationModel{
		ID:              c.ID,
		OrderItemID:     c.OrderItemID,
		CustomizationID: c.CustomizationID,
		Name:            c.Name,
		CustomText:      c.CustomText,
		Quantity:        c.Quantity,
		Price:           c.Price,
	}
}
