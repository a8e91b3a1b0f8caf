package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// withLines preloads cart lines oldest first with their customizations
func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Customizations.Customization")
}

// FindByUser returns the cart of a user
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var model models.CartModel
	if err := withLines(r.db.WithContext(ctx)).
		First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a cart and replaces its lines
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(models.CartModelFromDomain(c)).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(c.Items))
		for i := range c.Items {
			currentItemIDs[i] = c.Items[i].ID
		}

		// Delete lines (and their customizations) not in the current list
		var staleItemIDs []uuid.UUID
		query := tx.Model(&models.CartItemModel{}).Where("cart_id = ?", c.ID)
		if len(currentItemIDs) > 0 {
			query = query.Where("id NOT IN ?", currentItemIDs)
		}
		if err := query.Pluck("id", &staleItemIDs).Error; err != nil {
			return err
		}
		if len(staleItemIDs) > 0 {
			if err := tx.Where("cart_item_id IN ?", staleItemIDs).
				Delete(&models.CartItemCustomizationModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", staleItemIDs).
				Delete(&models.CartItemModel{}).Error; err != nil {
				return err
			}
		}

		for i := range c.Items {
			item := &c.Items[i]
			item.CartID = c.ID
			if err := tx.Omit(clause.Associations).Save(models.CartItemModelFromDomain(item)).Error; err != nil {
				return err
			}
			if err := saveCartItemCustomizations(tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveCartItemCustomizations(tx *gorm.DB, item *cart.Item) error {
	currentIDs := make([]uuid.UUID, len(item.Customizations))
	for i := range item.Customizations {
		currentIDs[i] = item.Customizations[i].ID
	}

	query := tx.Where("cart_item_id = ?", item.ID)
	if len(currentIDs) > 0 {
		query = query.Where("id NOT IN ?", currentIDs)
	}
	if err := query.Delete(&models.CartItemCustomizationModel{}).Error; err != nil {
		return err
	}

	for i := range item.Customizations {
		row := &item.Customizations[i]
		row.CartItemID = item.ID
		if err := tx.Omit(clause.Associations).
			Save(models.CartItemCustomizationModelFromDomain(row)).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindUsersWithItemsBefore returns users having at least one line created before cutoff
func (r *GormCartRepository) FindUsersWithItemsBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CartModel{}).
		Joins("JOIN cart_items ON cart_items.cart_id = carts.id").
		Where("cart_items.created_at < ?", cutoff).
		Distinct().
		Pluck("carts.user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

// FindItemsBefore returns a user's lines created before cutoff, oldest first
func (r *GormCartRepository) FindItemsBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]cart.Item, error) {
	var itemModels []models.CartItemModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND cart_items.created_at < ?", userID, cutoff).
		Preload("Customizations.Customization").
		Order("cart_items.created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]cart.Item, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items, nil
}

// FindByCustomization returns the carts having a line with the customization
func (r *GormCartRepository) FindByCustomization(ctx context.Context, customizationID uuid.UUID) ([]cart.Cart, error) {
	var cartIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CartItemCustomizationModel{}).
		Joins("JOIN cart_items ON cart_items.id = cart_item_customizations.cart_item_id").
		Where("cart_item_customizations.customization_id = ?", customizationID).
		Distinct().
		Pluck("cart_items.cart_id", &cartIDs).Error; err != nil {
		return nil, err
	}
	if len(cartIDs) == 0 {
		return []cart.Cart{}, nil
	}

	var cartModels []models.CartModel
	if err := withLines(r.db.WithContext(ctx)).
		Where("id IN ?", cartIDs).
		Order("created_at ASC").
		Find(&cartModels).Error; err != nil {
		return nil, err
	}
	carts := make([]cart.Cart, len(cartModels))
	for i := range cartModels {
		carts[i] = *cartModels[i].ToDomain()
	}
	return carts, nil
}

// Ensure GormCartRepository implements CartRepository
var _ cart.CartRepository = (*GormCartRepository)(nil)
