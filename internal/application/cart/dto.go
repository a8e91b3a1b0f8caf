package cart

import (
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=10"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateQuantityRequest changes the quantity of a line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// AddCustomizationRequest attaches a customization to a line
type AddCustomizationRequest struct {
	CustomizationID uuid.UUID `json:"customization_id" binding:"required"`
	CustomText      string    `json:"custom_text" binding:"max=50"`
	Quantity        int       `json:"quantity" binding:"required,min=1"`
}

// CustomizationResponse is a customization row of a cart line
type CustomizationResponse struct {
	ID              uuid.UUID       `json:"id"`
	CustomizationID uuid.UUID       `json:"customization_id"`
	Name            string          `json:"name"`
	CustomText      string          `json:"custom_text,omitempty"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
}

// ItemResponse is a cart line
type ItemResponse struct {
	ID             uuid.UUID               `json:"id"`
	ProductID      uuid.UUID               `json:"product_id"`
	ProductName    string                  `json:"product_name"`
	Size           string                  `json:"size"`
	Quantity       int                     `json:"quantity"`
	Price          decimal.Decimal         `json:"price"`
	TotalPrice     decimal.Decimal         `json:"total_price"`
	Customizations []CustomizationResponse `json:"customizations"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Items     []ItemResponse  `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// ToCartResponse converts a domain Cart to CartResponse
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]ItemResponse, len(c.Items))
	for i, item := range c.Items {
		customizations := make([]CustomizationResponse, len(item.Customizations))
		for j, row := range item.Customizations {
			customizations[j] = CustomizationResponse{
				ID:              row.ID,
				CustomizationID: row.CustomizationID,
				Name:            row.Name,
				CustomText:      row.CustomText,
				Quantity:        row.Quantity,
				Price:           row.Price,
			}
		}
		items[i] = ItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Size:           item.Size,
			Quantity:       item.Quantity,
			Price:          item.Price,
			TotalPrice:     item.TotalPrice,
			Customizations: customizations,
		}
	}
	return CartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
	}
}
