package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/shared"
)

// CartService handles shopping cart operations. Every save refreshes line
// prices from the products' current price.
type CartService struct {
	cartRepo          cart.CartRepository
	productRepo       catalog.ProductRepository
	customizationRepo catalog.CustomizationRepository
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	customizationRepo catalog.CustomizationRepository,
) *CartService {
	return &CartService{
		cartRepo:          cartRepo,
		productRepo:       productRepo,
		customizationRepo: customizationRepo,
	}
}

// GetCart returns the user's cart, empty when none was saved yet
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToCartResponse(c)
	return &response, nil
}

// AddItem adds a product, merging with a line of the same product and size
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddItem(product, req.Size, req.Quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// UpdateQuantity sets the quantity of a line
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, req UpdateQuantityRequest) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQuantity(itemID, req.Quantity, nil); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// RemoveItem drops a line
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(itemID); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// AddCustomization attaches a customization to a line
func (s *CartService) AddCustomization(ctx context.Context, userID, itemID uuid.UUID, req AddCustomizationRequest) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	def, err := s.customizationRepo.FindByID(ctx, req.CustomizationID)
	if err != nil {
		return nil, err
	}
	if err := c.AddCustomization(itemID, def, req.CustomText, req.Quantity, nil); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Clear()
	return s.save(ctx, c)
}

func (s *CartService) load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return cart.NewCart(userID)
	}
	return nil, err
}

// save refreshes every line against the current product prices and persists the cart
func (s *CartService) save(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	if err := RefreshPrices(ctx, s.productRepo, c); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	response := ToCartResponse(c)
	return &response, nil
}

// RefreshPrices recomputes every line of c from its product's current price.
// Lines whose product disappeared keep their stored price.
func RefreshPrices(ctx context.Context, products catalog.ProductRepository, c *cart.Cart) error {
	if c.IsEmpty() {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for i := range c.Items {
		c.Items[i].Recalculate(byID[c.Items[i].ProductID])
	}
	return nil
}
