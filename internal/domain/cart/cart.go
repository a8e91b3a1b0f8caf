package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemCustomization is a customization attached to a cart line
type ItemCustomization struct {
	ID              uuid.UUID
	CartItemID      uuid.UUID
	CustomizationID uuid.UUID
	Name            string
	Type            catalog.CustomizationType
	UnitPrice       decimal.Decimal
	CustomText      string
	Quantity        int
	Price           decimal.Decimal
}

// Reprice recomputes Price from the customization unit price
func (c *ItemCustomization) Reprice() {
	def := catalog.Customization{Type: c.Type, Price: c.UnitPrice}
	c.Price = def.PriceFor(c.CustomText, c.Quantity)
}

// Item is one product/size line in a user's cart
type Item struct {
	shared.BaseEntity
	CartID         uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Size           string
	Quantity       int
	Price          decimal.Decimal // product current price at last save
	TotalPrice     decimal.Decimal // Price * Quantity + customizations
	Customizations []ItemCustomization
}

// CustomizationTotal sums the customization prices
func (i *Item) CustomizationTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range i.Customizations {
		total = total.Add(c.Price)
	}
	return total
}

// Recalculate refreshes Price from the product and recomputes every derived amount.
// It must run before every save.
func (i *Item) Recalculate(product *catalog.Product) {
	if product != nil {
		i.Price = product.CurrentPrice()
		i.ProductName = product.Name
	}
	for idx := range i.Customizations {
		i.Customizations[idx].Reprice()
	}
	i.TotalPrice = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity))).Add(i.CustomizationTotal())
	i.UpdatedAt = time.Now()
}

// Cart is the aggregate of a user's pending items
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Items  []Item
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]Item, 0),
	}, nil
}

// AddItem adds a product line, merging with an existing line of the same product and size
func (c *Cart) AddItem(product *catalog.Product, size string, quantity int) (*Item, error) {
	if product == nil || !product.IsActive {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	for idx := range c.Items {
		item := &c.Items[idx]
		if item.ProductID == product.ID && item.Size == size {
			item.Quantity += quantity
			item.Recalculate(product)
			c.Touch()
			return item, nil
		}
	}

	item := Item{
		BaseEntity:     shared.NewBaseEntity(),
		CartID:         c.ID,
		ProductID:      product.ID,
		Size:           size,
		Quantity:       quantity,
		Customizations: make([]ItemCustomization, 0),
	}
	item.Recalculate(product)
	c.Items = append(c.Items, item)
	c.Touch()
	return &c.Items[len(c.Items)-1], nil
}

// FindItem returns the line with the given id
func (c *Cart) FindItem(itemID uuid.UUID) (*Item, error) {
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			return &c.Items[idx], nil
		}
	}
	return nil, shared.NewDomainError("CART_ITEM_NOT_FOUND", "Cart item not found")
}

// UpdateQuantity sets the quantity of a line
func (c *Cart) UpdateQuantity(itemID uuid.UUID, quantity int, product *catalog.Product) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	item, err := c.FindItem(itemID)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	item.Recalculate(product)
	c.Touch()
	return nil
}

// RemoveItem drops a line
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.Touch()
			return nil
		}
	}
	return shared.NewDomainError("CART_ITEM_NOT_FOUND", "Cart item not found")
}

// AddCustomization attaches a customization to a line
func (c *Cart) AddCustomization(itemID uuid.UUID, def *catalog.Customization, customText string, quantity int, product *catalog.Product) error {
	if def == nil || !def.IsActive {
		return shared.NewDomainError("CUSTOMIZATION_UNAVAILABLE", "Customization is not available")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if def.Type == catalog.CustomizationTypeName && customText == "" {
		return shared.NewDomainError("INVALID_CUSTOM_TEXT", "Custom text is required for name printing")
	}
	item, err := c.FindItem(itemID)
	if err != nil {
		return err
	}
	item.Customizations = append(item.Customizations, ItemCustomization{
		ID:              uuid.New(),
		CartItemID:      item.ID,
		CustomizationID: def.ID,
		Name:            def.Name,
		Type:            def.Type,
		UnitPrice:       def.Price,
		CustomText:      customText,
		Quantity:        quantity,
	})
	item.Recalculate(product)
	c.Touch()
	return nil
}

// RepriceCustomization applies a new unit price to every row of the customization.
// Product prices are left as stored. Returns the number of rows changed.
func (c *Cart) RepriceCustomization(def *catalog.Customization) int {
	changed := 0
	for idx := range c.Items {
		item := &c.Items[idx]
		touched := false
		for cIdx := range item.Customizations {
			row := &item.Customizations[cIdx]
			if row.CustomizationID != def.ID {
				continue
			}
			row.UnitPrice = def.Price
			row.Type = def.Type
			changed++
			touched = true
		}
		if touched {
			item.Recalculate(nil)
		}
	}
	if changed > 0 {
		c.Touch()
	}
	return changed
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.Touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the total number of units across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Total sums every line total
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}
