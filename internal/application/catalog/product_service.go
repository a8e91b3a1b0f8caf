package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/catalog"
	"go.uber.org/zap"
)

// StockAlerter warns staff about low stock
type StockAlerter interface {
	SendStockAlert(ctx context.Context, product *catalog.Product, currentStock int) (bool, error)
}

// CartRepricer updates cart lines after a customization price change
type CartRepricer interface {
	RepriceCartCustomizations(ctx context.Context, customizationID uuid.UUID) (int, error)
}

// ProductService handles product and customization business operations
type ProductService struct {
	productRepo       catalog.ProductRepository
	customizationRepo catalog.CustomizationRepository
	alerter           StockAlerter
	repricer          CartRepricer
	lowStockThreshold int
	logger            *zap.Logger
}

// NewProductService creates a new ProductService. A threshold of zero or
// less falls back to catalog.DefaultLowStockThreshold.
func NewProductService(
	productRepo catalog.ProductRepository,
	customizationRepo catalog.CustomizationRepository,
	alerter StockAlerter,
	repricer CartRepricer,
	lowStockThreshold int,
	logger *zap.Logger,
) *ProductService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = catalog.DefaultLowStockThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:       productRepo,
		customizationRepo: customizationRepo,
		alerter:           alerter,
		repricer:          repricer,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// UpdateStock saves a new stock level. Crossing the low-stock threshold
// downwards alerts staff; a failed alert does not undo the stock change.
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*StockUpdateResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := product.SetStock(req.Stock, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save stock: %w", err)
	}

	response := &StockUpdateResponse{
		Product:       ToProductResponse(product),
		PreviousStock: change.Previous,
		LowStock:      change.Current <= s.lowStockThreshold,
	}
	if !change.CrossedLowStock || s.alerter == nil {
		return response, nil
	}

	sent, err := s.alerter.SendStockAlert(ctx, product, change.Current)
	if err != nil {
		s.logger.Error("Failed to send stock alert",
			zap.String("product_id", product.ID.String()),
			zap.Int("stock", change.Current),
			zap.Error(err))
	}
	response.AlertSent = sent
	return response, nil
}

// ListCustomizations returns the active customizations
func (s *ProductService) ListCustomizations(ctx context.Context) ([]CustomizationResponse, error) {
	customizations, err := s.customizationRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]CustomizationResponse, len(customizations))
	for i := range customizations {
		responses[i] = ToCustomizationResponse(&customizations[i])
	}
	return responses, nil
}

// ReplaceCustomizationPrice saves a new unit price and reprices the cart
// lines carrying the customization
func (s *ProductService) ReplaceCustomizationPrice(ctx context.Context, id uuid.UUID, req UpdateCustomizationPriceRequest) (*CustomizationPriceResponse, error) {
	customization, err := s.customizationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := customization.Price
	if err := customization.ChangePrice(req.Price); err != nil {
		return nil, err
	}
	if err := s.customizationRepo.Save(ctx, customization); err != nil {
		return nil, fmt.Errorf("failed to save customization: %w", err)
	}

	response := &CustomizationPriceResponse{
		Customization: ToCustomizationResponse(customization),
		PreviousPrice: previous,
	}
	if s.repricer == nil || previous.Equal(customization.Price) {
		return response, nil
	}
	repriced, err := s.repricer.RepriceCartCustomizations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reprice carts: %w", err)
	}
	response.RepricedOnCart = repriced
	return response, nil
}
