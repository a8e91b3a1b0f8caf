package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(model).Error
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormCustomizationRepository implements CustomizationRepository using GORM
type GormCustomizationRepository struct {
	db *gorm.DB
}

// NewGormCustomizationRepository creates a new GormCustomizationRepository
func NewGormCustomizationRepository(db *gorm.DB) *GormCustomizationRepository {
	return &GormCustomizationRepository{db: db}
}

// FindByID finds a customization by its ID
func (r *GormCustomizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Customization, error) {
	var model models.CustomizationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active customizations by name
func (r *GormCustomizationRepository) FindActive(ctx context.Context) ([]catalog.Customization, error) {
	var customizationModels []models.CustomizationModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&customizationModels).Error; err != nil {
		return nil, err
	}
	customizations := make([]catalog.Customization, len(customizationModels))
	for i := range customizationModels {
		customizations[i] = *customizationModels[i].ToDomain()
	}
	return customizations, nil
}

// Save creates or updates a customization
func (r *GormCustomizationRepository) Save(ctx context.Context, customization *catalog.Customization) error {
	return r.db.WithContext(ctx).Save(models.CustomizationModelFromDomain(customization)).Error
}

// Ensure GormCustomizationRepository implements CustomizationRepository
var _ catalog.CustomizationRepository = (*GormCustomizationRepository)(nil)
