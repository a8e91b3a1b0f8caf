package persistence

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderNumberAttempts = 10

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db, now: time.Now}
}

// withItems preloads order lines oldest first with their customizations
func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Customizations")
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var model models.OrderModel
	if err := withItems(r.db.WithContext(ctx)).
		Where(query, args...).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNumber finds an order by its number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

// FindByIDs finds several orders with their lines
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]order.Order, error) {
	if len(ids) == 0 {
		return []order.Order{}, nil
	}
	var orderModels []models.OrderModel
	if err := withItems(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindAll finds orders matching the filter. A zero PageSize returns every match.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(withItems(r.db.WithContext(ctx)).Model(&models.OrderModel{}), filter)
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindWithoutItems returns orders that have no lines
func (r *GormOrderRepository) FindWithoutItems(ctx context.Context) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM order_items WHERE order_items.order_id = orders.id)").
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// Save creates or updates an order and its lines. An update moves the
// version past the stored one, so an edit holding the old version fails
// SaveWithLock.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nextVersion(tx, &models.OrderModel{}, o.ID, &o.Version); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(models.OrderModelFromDomain(o)).Error; err != nil {
			return err
		}
		return saveOrderItems(tx, o)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var current struct{ Version int }
		if err := tx.Model(&models.OrderModel{}).
			Select("version").
			Where("id = ?", o.ID).
			Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != o.Version {
			return shared.ErrConcurrencyConflict
		}

		o.IncrementVersion()
		o.UpdatedAt = time.Now()

		// Update order with version check
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, current.Version).
			Updates(map[string]any{
				"status":             o.Status,
				"payment_status":     o.PaymentStatus,
				"payment_method":     o.PaymentMethod,
				"subtotal":           o.Subtotal,
				"shipping_cost":      o.ShippingCost,
				"total":              o.Total,
				"paid_at":            o.PaidAt,
				"shipping_full_name": o.ShippingAddress.FullName,
				"shipping_phone":     o.ShippingAddress.Phone,
				"shipping_address":   o.ShippingAddress.Address,
				"shipping_city":      o.ShippingAddress.City,
				"notes":              o.Notes,
				"version":            o.Version,
				"updated_at":         o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveOrderItems(tx, o)
	})
}

func saveOrderItems(tx *gorm.DB, o *order.Order) error {
	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i := range o.Items {
		currentItemIDs[i] = o.Items[i].ID
	}

	// Delete lines (and their customizations) not in the current list
	var staleItemIDs []uuid.UUID
	query := tx.Model(&models.OrderItemModel{}).Where("order_id = ?", o.ID)
	if len(currentItemIDs) > 0 {
		query = query.Where("id NOT IN ?", currentItemIDs)
	}
	if err := query.Pluck("id", &staleItemIDs).Error; err != nil {
		return err
	}
	if len(staleItemIDs) > 0 {
		if err := tx.Where("order_item_id IN ?", staleItemIDs).
			Delete(&models.OrderItemCustomizationModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", staleItemIDs).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if err := tx.Omit(clause.Associations).Save(models.OrderItemModelFromDomain(item)).Error; err != nil {
			return err
		}

		customizationIDs := make([]uuid.UUID, len(item.Customizations))
		for j := range item.Customizations {
			customizationIDs[j] = item.Customizations[j].ID
		}
		stale := tx.Where("order_item_id = ?", item.ID)
		if len(customizationIDs) > 0 {
			stale = stale.Where("id NOT IN ?", customizationIDs)
		}
		if err := stale.Delete(&models.OrderItemCustomizationModel{}).Error; err != nil {
			return err
		}
		for j := range item.Customizations {
			row := &item.Customizations[j]
			row.OrderItemID = item.ID
			if err := tx.Save(models.OrderItemCustomizationModelFromDomain(row)).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete removes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var itemIDs []uuid.UUID
		if err := tx.Model(&models.OrderItemModel{}).
			Where("order_id = ?", id).
			Pluck("id", &itemIDs).Error; err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("order_item_id IN ?", itemIDs).
				Delete(&models.OrderItemCustomizationModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountByStatus counts orders per fulfilment status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	var rows []struct {
		Status order.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[order.Status]int64, len(order.AllStatuses))
	for _, s := range order.AllStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumTotalByPaymentStatus sums order totals with the given payment status
func (r *GormOrderRepository) SumTotalByPaymentStatus(ctx context.Context, status order.PaymentStatus) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("payment_status = ?", status).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// GenerateOrderNumber returns an unused order number
// Format: CMD + YYYYMMDDHHMMSS + 3 random digits (e.g., CMD20250905114242042)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	stamp := "CMD" + r.now().Format("20060102150405")
	for i := 0; i < orderNumberAttempts; i++ {
		candidate := fmt.Sprintf("%s%03d", stamp, rand.IntN(1000))

		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.OrderModel{}).
			Where("order_number = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", shared.NewDomainError("ORDER_NUMBER_EXHAUSTED", "Could not allocate a unique order number")
}

// applyFilter applies filter options, ordering and pagination
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(order_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	query = query.Order(sortClause(filter.OrderBy, filter.OrderDir, orderSortColumns, "created_at"))

	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

func toDomainOrders(orderModels []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
