package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewTestDatabase opens a migrated in-memory sqlite database closed at test end
func NewTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newBaseModel() models.BaseModel {
	now := time.Now()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// newTestOrder builds a pending PayDunya order with one unit per price and totals in sync
func newTestOrder(t *testing.T, number string, prices ...int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(number, uuid.New(), order.PaymentMethodPayDunya, order.ShippingAddress{
		FullName: "Awa Diop",
		Phone:    "+221770000000",
		Address:  "Rue 10, Medina",
		City:     "Dakar",
	})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i, price := range prices {
		item, err := order.NewItem(o.ID, uuid.New(), "Maillot", "M", 1, decimal.NewFromInt(price))
		require.NoError(t, err)
		item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		o.AddItem(*item)
	}
	o.RecalculateTotals()
	require.NoError(t, o.SetShippingCost(decimal.NewFromInt(1000)))
	return o
}
