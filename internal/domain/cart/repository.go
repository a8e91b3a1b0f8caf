package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUser returns the user's cart or shared.ErrNotFound
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save persists the cart and replaces its lines
	Save(ctx context.Context, cart *Cart) error

	// FindUsersWithItemsBefore returns users having at least one line created before cutoff
	FindUsersWithItemsBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	// FindItemsBefore returns a user's lines created before cutoff
	FindItemsBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]Item, error)

	// FindByCustomization returns the carts having a line with the customization
	FindByCustomization(ctx context.Context, customizationID uuid.UUID) ([]Cart, error)
}
