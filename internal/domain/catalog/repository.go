package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// CustomizationRepository defines the interface for customization persistence
type CustomizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customization, error)
	FindActive(ctx context.Context) ([]Customization, error)
	Save(ctx context.Context, customization *Customization) error
}
