package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("Maillot Sénégal Domicile 2024", decimal.NewFromInt(15000), 10)
		require.NoError(t, err)

		assert.Equal(t, "maillot-senegal-domicile-2024", product.Slug)
		assert.True(t, product.IsActive)
		assert.Equal(t, 10, product.StockQuantity)
		assert.Equal(t, 1, product.GetVersion())
		assert.NotEmpty(t, product.ID)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("  ", decimal.NewFromInt(15000), 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("Maillot", decimal.NewFromInt(-1), 1)
		require.Error(t, err)
	})
}

func TestProduct_CurrentPrice(t *testing.T) {
	product, err := NewProduct("Maillot PSG", decimal.NewFromInt(20000), 3)
	require.NoError(t, err)

	t.Run("regular price without sale", func(t *testing.T) {
		assert.True(t, product.CurrentPrice().Equal(decimal.NewFromInt(20000)))
		assert.False(t, product.IsOnSale())
		assert.Equal(t, 0, product.DiscountPercentage())
	})

	t.Run("sale price when lower", func(t *testing.T) {
		sale := decimal.NewFromInt(15000)
		require.NoError(t, product.SetSalePrice(&sale))
		assert.True(t, product.CurrentPrice().Equal(sale))
		assert.Equal(t, 25, product.DiscountPercentage())
	})

	t.Run("ignores sale price not below regular price", func(t *testing.T) {
		sale := decimal.NewFromInt(25000)
		require.NoError(t, product.SetSalePrice(&sale))
		assert.True(t, product.CurrentPrice().Equal(decimal.NewFromInt(20000)))
	})
}

func TestProduct_SetStock(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		crossed  bool
	}{
		{"drop from above threshold to threshold", 6, 5, true},
		{"drop from above threshold to zero", 20, 0, true},
		{"already low", 5, 3, false},
		{"stays above threshold", 10, 6, false},
		{"restock", 2, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := NewProduct("Maillot", decimal.NewFromInt(1000), tt.from)
			require.NoError(t, err)

			change, err := product.SetStock(tt.to, DefaultLowStockThreshold)
			require.NoError(t, err)
			assert.Equal(t, tt.crossed, change.CrossedLowStock)
			assert.Equal(t, tt.from, change.Previous)
			assert.Equal(t, tt.to, product.StockQuantity)
		})
	}

	t.Run("rejects negative stock", func(t *testing.T) {
		product, err := NewProduct("Maillot", decimal.NewFromInt(1000), 1)
		require.NoError(t, err)
		_, err = product.SetStock(-1, DefaultLowStockThreshold)
		require.Error(t, err)
	})
}

func TestCustomization_PriceFor(t *testing.T) {
	t.Run("name is charged per character", func(t *testing.T) {
		c, err := NewCustomization("Nom et numéro", CustomizationTypeName, decimal.NewFromInt(500))
		require.NoError(t, err)

		assert.True(t, c.PriceFor("MESSI 10", 1).Equal(decimal.NewFromInt(4000)))
		assert.True(t, c.PriceFor("MESSI 10", 2).Equal(decimal.NewFromInt(8000)))
	})

	t.Run("name without text is charged per unit", func(t *testing.T) {
		c, err := NewCustomization("Nom", CustomizationTypeName, decimal.NewFromInt(500))
		require.NoError(t, err)
		assert.True(t, c.PriceFor("", 3).Equal(decimal.NewFromInt(1500)))
	})

	t.Run("badge is charged per unit", func(t *testing.T) {
		c, err := NewCustomization("Badge Ligue", CustomizationTypeBadge, decimal.NewFromInt(2000))
		require.NoError(t, err)
		assert.True(t, c.PriceFor("ignored", 2).Equal(decimal.NewFromInt(4000)))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewCustomization("Foo", CustomizationType("sticker"), decimal.NewFromInt(1))
		require.Error(t, err)
	})
}
