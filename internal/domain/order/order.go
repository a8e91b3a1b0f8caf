package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemCustomization is a customization snapshot on an order line
type ItemCustomization struct {
	ID              uuid.UUID
	OrderItemID     uuid.UUID
	CustomizationID uuid.UUID
	Name            string
	CustomText      string
	Quantity        int
	Price           decimal.Decimal
}

// Item is an order line. Price is the unit price at order time.
type Item struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Size           string
	Quantity       int
	Price          decimal.Decimal
	TotalPrice     decimal.Decimal
	Customizations []ItemCustomization
	CreatedAt      time.Time
}

// NewItem creates an order line without customizations
func NewItem(orderID, productID uuid.UUID, productName, size string, quantity int, unitPrice decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &Item{
		ID:             uuid.New(),
		OrderID:        orderID,
		ProductID:      productID,
		ProductName:    productName,
		Size:           size,
		Quantity:       quantity,
		Price:          unitPrice,
		TotalPrice:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Customizations: make([]ItemCustomization, 0),
		CreatedAt:      time.Now(),
	}, nil
}

// BasePrice is Price * Quantity
func (i *Item) BasePrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddCustomization copies a customization onto the line and refreshes TotalPrice
func (i *Item) AddCustomization(customizationID uuid.UUID, name, customText string, quantity int, price decimal.Decimal) {
	i.Customizations = append(i.Customizations, ItemCustomization{
		ID:              uuid.New(),
		OrderItemID:     i.ID,
		CustomizationID: customizationID,
		Name:            name,
		CustomText:      customText,
		Quantity:        quantity,
		Price:           price,
	})
	i.TotalPrice = i.TotalWithCustomizations()
}

// TotalWithCustomizations is the base price plus every customization price
func (i *Item) TotalWithCustomizations() decimal.Decimal {
	total := i.BasePrice()
	for _, c := range i.Customizations {
		total = total.Add(c.Price)
	}
	return total
}

// ShippingAddress is where the order is delivered
type ShippingAddress struct {
	FullName string
	Phone    string
	Address  string
	City     string
}

// Order is the customer purchase aggregate root
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	UserID          uuid.UUID
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
	PaidAt          *time.Time
	ShippingAddress ShippingAddress
	Notes           string
	Items           []Item
}

// NewOrder creates a pending order with no lines
func NewOrder(orderNumber string, userID uuid.UUID, method PaymentMethod, address ShippingAddress) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	paymentStatus := PaymentStatusPending
	if method == PaymentMethodCashOnDelivery {
		paymentStatus = PaymentStatusCashOnDelivery
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		UserID:            userID,
		Status:            StatusPending,
		PaymentStatus:     paymentStatus,
		PaymentMethod:     method,
		Subtotal:          decimal.Zero,
		ShippingCost:      decimal.Zero,
		Total:             decimal.Zero,
		ShippingAddress:   address,
		Items:             make([]Item, 0),
	}, nil
}

// AddItem appends a line
func (o *Order) AddItem(item Item) {
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
}

// ItemsTotal sums the stored line totals
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// ValidateTotals checks subtotal == Σ item totals and total == subtotal + shipping
func (o *Order) ValidateTotals() bool {
	if !o.Subtotal.Equal(o.ItemsTotal()) {
		return false
	}
	return o.Total.Equal(o.Subtotal.Add(o.ShippingCost))
}

// ExpectedTotals returns the subtotal and total the lines imply
func (o *Order) ExpectedTotals() (subtotal, total decimal.Decimal) {
	subtotal = o.ItemsTotal()
	return subtotal, subtotal.Add(o.ShippingCost)
}

// RecalculateTotals rewrites subtotal and total from the lines. Shipping is kept.
func (o *Order) RecalculateTotals() {
	o.Subtotal, o.Total = o.ExpectedTotals()
	o.Touch()
}

// SetShippingCost sets the delivery fee and refreshes the total
func (o *Order) SetShippingCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING_COST", "Shipping cost cannot be negative")
	}
	o.ShippingCost = cost
	o.Total = o.Subtotal.Add(cost)
	o.Touch()
	return nil
}

// CanBeCancelled is true while the order has not left the warehouse
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// SetStatus assigns any valid status
func (o *Order) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_ORDER_STATUS", "Unknown order status: "+string(status))
	}
	o.Status = status
	o.Touch()
	return nil
}

// SetPaymentStatus assigns any valid payment status
func (o *Order) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status: "+string(status))
	}
	o.PaymentStatus = status
	o.Touch()
	return nil
}

// Cancel marks the order cancelled and its payment refunded
func (o *Order) Cancel() {
	o.Status = StatusCancelled
	o.PaymentStatus = PaymentStatusRefunded
	o.Touch()
}

// MarkPaid records the payment as received
func (o *Order) MarkPaid(at time.Time) {
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &at
	o.Touch()
}

// IsAwaitingCashPayment reports whether the order is an unsettled cash-on-delivery order
func (o *Order) IsAwaitingCashPayment() bool {
	return o.PaymentMethod == PaymentMethodCashOnDelivery && o.PaymentStatus == PaymentStatusCashOnDelivery
}
