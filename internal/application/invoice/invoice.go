// Package invoice builds printable invoices for placed orders.
package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NumberPrefix starts every invoice number
const NumberPrefix = "FAC-"

// Line is one invoiced order line
type Line struct {
	ProductName    string
	Size           string
	Quantity       int
	UnitPrice      decimal.Decimal
	Customizations []LineCustomization
	Total          decimal.Decimal
}

// LineCustomization is a flocking or patch billed on a line
type LineCustomization struct {
	Name       string
	CustomText string
	Price      decimal.Decimal
}

// Data is everything printed on an invoice
type Data struct {
	Number        string
	OrderID       uuid.UUID
	OrderNumber   string
	IssuedAt      time.Time
	OrderedAt     time.Time
	ShopName      string
	CustomerName  string
	CustomerEmail string
	Phone         string
	Address       string
	City          string
	Lines         []Line
	Subtotal      decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	PaidAt        *time.Time
}

// Filename is the download name of the rendered invoice
func (d *Data) Filename(ext string) string {
	return d.Number + "." + ext
}
