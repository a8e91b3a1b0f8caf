package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"github.com/maillots/storefront/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	m := testutil.NewMockDB(t)
	return NewGormOrderRepository(m.DB), m.Mock, m.SqlDB
}

func TestGormOrderRepository_FindByID_Mock(t *testing.T) {
	t.Run("returns ErrNotFound for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.Nil(t, o)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.FindByID(context.Background(), orderID)

		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	o := newTestOrder(t, "CMD20240101120000001", 10000, 5000)
	o.Items[0].AddCustomization(uuid.New(), "Nom et numéro", "DIOP", 1, decimal.NewFromInt(2000))
	o.RecalculateTotals()
	require.NoError(t, o.SetShippingCost(decimal.NewFromInt(1000)))
	require.NoError(t, repo.Save(ctx, o))

	t.Run("loads lines oldest first with customizations", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		assert.Equal(t, o.OrderNumber, found.OrderNumber)
		assert.Equal(t, order.StatusPending, found.Status)
		assert.Equal(t, order.PaymentStatusPending, found.PaymentStatus)
		assert.Equal(t, "Dakar", found.ShippingAddress.City)
		require.Len(t, found.Items, 2)
		assert.True(t, decimal.NewFromInt(12000).Equal(found.Items[0].TotalPrice))
		require.Len(t, found.Items[0].Customizations, 1)
		assert.Equal(t, "Nom et numéro", found.Items[0].Customizations[0].Name)
		assert.Equal(t, "DIOP", found.Items[0].Customizations[0].CustomText)
		assert.True(t, decimal.NewFromInt(17000).Equal(found.Subtotal))
		assert.True(t, decimal.NewFromInt(18000).Equal(found.Total))
		assert.True(t, found.ValidateTotals())
	})

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, "CMD20240101120000001")
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)

		_, err = repo.FindByOrderNumber(ctx, "CMD00000000000000000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("removes dropped lines and their customizations", func(t *testing.T) {
		reloaded, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		reloaded.Items = reloaded.Items[1:]
		reloaded.RecalculateTotals()
		require.NoError(t, repo.Save(ctx, reloaded))

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.True(t, decimal.NewFromInt(5000).Equal(found.Subtotal))

		var count int64
		require.NoError(t, db.DB.Model(&models.OrderItemCustomizationModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestGormOrderRepository_FindByIDs(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	first := newTestOrder(t, "CMD20240101120000001", 10000)
	second := newTestOrder(t, "CMD20240101120000002", 20000)
	third := newTestOrder(t, "CMD20240101120000003", 30000)
	for _, o := range []*order.Order{first, second, third} {
		require.NoError(t, repo.Save(ctx, o))
	}

	found, err := repo.FindByIDs(ctx, []uuid.UUID{first.ID, third.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	o := newTestOrder(t, "CMD20240101120000001", 10000)
	require.NoError(t, repo.Save(ctx, o))

	t.Run("updates and bumps the version", func(t *testing.T) {
		edit, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.NoError(t, edit.SetStatus(order.StatusProcessing))

		require.NoError(t, repo.SaveWithLock(ctx, edit))
		assert.Equal(t, 2, edit.Version)

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing, found.Status)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		stale := *o
		stale.Version = 1
		require.NoError(t, stale.SetStatus(order.StatusShipped))

		err := repo.SaveWithLock(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing, found.Status)
	})

	t.Run("returns ErrNotFound for missing order", func(t *testing.T) {
		missing := newTestOrder(t, "CMD20240101120000009", 10000)
		assert.ErrorIs(t, repo.SaveWithLock(ctx, missing), shared.ErrNotFound)
	})
}

func TestGormOrderRepository_SaveBumpsVersion(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	o := newTestOrder(t, "CMD20240101120000001", 10000)
	require.NoError(t, repo.Save(ctx, o))
	assert.Equal(t, 1, o.Version)

	edit, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	stale := *edit

	require.NoError(t, edit.SetStatus(order.StatusCancelled))
	require.NoError(t, repo.Save(ctx, edit))
	assert.Equal(t, 2, edit.Version)

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Version)

	// a copy loaded before the plain save is stale
	require.NoError(t, stale.SetStatus(order.StatusShipped))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, &stale), shared.ErrConcurrencyConflict)

	found, err = repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, found.Status)
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	base := time.Now().Add(-24 * time.Hour)
	for i, number := range []string{"CMD20240101120000001", "CMD20240101120000002", "CMD20240101120000003"} {
		o := newTestOrder(t, number, 10000)
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if i == 2 {
			require.NoError(t, o.SetStatus(order.StatusShipped))
			o.MarkPaid(time.Now())
		}
		require.NoError(t, repo.Save(ctx, o))
	}

	t.Run("zero page size returns every order", func(t *testing.T) {
		all, err := repo.FindAll(ctx, shared.Filter{OrderBy: "created_at", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "CMD20240101120000001", all[0].OrderNumber)
		assert.Len(t, all[0].Items, 1)
	})

	t.Run("filters by status and payment status", func(t *testing.T) {
		shipped, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]any{"status": order.StatusShipped}})
		require.NoError(t, err)
		require.Len(t, shipped, 1)
		assert.Equal(t, "CMD20240101120000003", shipped[0].OrderNumber)

		pending, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]any{"payment_status": order.PaymentStatusPending}})
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("searches order numbers case-insensitively", func(t *testing.T) {
		found, err := repo.FindAll(ctx, shared.Filter{Search: "cmd20240101120000002"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "CMD20240101120000002", found[0].OrderNumber)
	})

	t.Run("paginates newest first", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2, OrderBy: "created_at", OrderDir: "desc"})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "CMD20240101120000001", page[0].OrderNumber)
	})

	t.Run("ignores unknown sort fields", func(t *testing.T) {
		all, err := repo.FindAll(ctx, shared.Filter{OrderBy: "total; DROP TABLE orders"})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestGormOrderRepository_FindWithoutItems(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	withLines := newTestOrder(t, "CMD20240101120000001", 10000)
	empty := newTestOrder(t, "CMD20240101120000002")
	require.NoError(t, repo.Save(ctx, withLines))
	require.NoError(t, repo.Save(ctx, empty))

	found, err := repo.FindWithoutItems(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, empty.ID, found[0].ID)
}

func TestGormOrderRepository_Delete(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	o := newTestOrder(t, "CMD20240101120000001", 10000, 2000)
	o.Items[0].AddCustomization(uuid.New(), "Badge", "", 1, decimal.NewFromInt(1500))
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, repo.Delete(ctx, o.ID))

	_, err := repo.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var items, customizations int64
	require.NoError(t, db.DB.Model(&models.OrderItemModel{}).Count(&items).Error)
	require.NoError(t, db.DB.Model(&models.OrderItemCustomizationModel{}).Count(&customizations).Error)
	assert.Zero(t, items)
	assert.Zero(t, customizations)

	assert.ErrorIs(t, repo.Delete(ctx, o.ID), shared.ErrNotFound)
}

func TestGormOrderRepository_Aggregates(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	paid := newTestOrder(t, "CMD20240101120000001", 10000)
	paid.MarkPaid(time.Now())
	paidToo := newTestOrder(t, "CMD20240101120000002", 24000)
	paidToo.MarkPaid(time.Now())
	cancelled := newTestOrder(t, "CMD20240101120000003", 5000)
	cancelled.Cancel()
	for _, o := range []*order.Order{paid, paidToo, cancelled} {
		require.NoError(t, repo.Save(ctx, o))
	}

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[order.StatusPending])
	assert.Equal(t, int64(1), counts[order.StatusCancelled])
	assert.Equal(t, int64(0), counts[order.StatusDelivered])
	assert.Len(t, counts, len(order.AllStatuses))

	revenue, err := repo.SumTotalByPaymentStatus(ctx, order.PaymentStatusPaid)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(36000).Equal(revenue), "got %s", revenue)

	none, err := repo.SumTotalByPaymentStatus(ctx, order.PaymentStatusFailed)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := NewTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	repo.now = func() time.Time { return time.Date(2025, 9, 5, 11, 42, 42, 0, time.UTC) }

	number, err := repo.GenerateOrderNumber(context.Background())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^CMD20250905114242\d{3}$`), number)
	assert.Len(t, number, 20)
}
