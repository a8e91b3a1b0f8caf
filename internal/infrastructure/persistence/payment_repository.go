package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) findOne(ctx context.Context, query string, args ...any) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderID finds the payment of an order
func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

// FindByIDs finds several payments
func (r *GormPaymentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]payment.Payment, error) {
	if len(ids) == 0 {
		return []payment.Payment{}, nil
	}
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindAll returns every payment, oldest first
func (r *GormPaymentRepository) FindAll(ctx context.Context) ([]payment.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// Save creates or updates a payment; an update bumps the version
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nextVersion(tx, &models.PaymentModel{}, p.ID, &p.Version); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(models.PaymentModelFromDomain(p)).Error
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct{ Version int }
		if err := tx.Model(&models.PaymentModel{}).
			Select("version").
			Where("id = ?", p.ID).
			Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != p.Version {
			return shared.ErrConcurrencyConflict
		}

		p.IncrementVersion()
		p.UpdatedAt = time.Now()

		result := tx.Model(&models.PaymentModel{}).
			Where("id = ? AND version = ?", p.ID, current.Version).
			Updates(map[string]any{
				"amount":              p.Amount,
				"status":              p.Status,
				"payment_method":      p.PaymentMethod,
				"transaction_id":      p.TransactionID,
				"wave_transaction_id": p.WaveTransactionID,
				"completed_at":        p.CompletedAt,
				"version":             p.Version,
				"updated_at":          p.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// DeleteByOrderID removes the payment of an order with its logs.
// An order without a payment is not an error.
func (r *GormPaymentRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paymentIDs []uuid.UUID
		if err := tx.Model(&models.PaymentModel{}).
			Where("order_id = ?", orderID).
			Pluck("id", &paymentIDs).Error; err != nil {
			return err
		}
		if len(paymentIDs) == 0 {
			return nil
		}
		if err := tx.Where("payment_id IN ?", paymentIDs).Delete(&models.PaymentLogModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", paymentIDs).Delete(&models.PaymentModel{}).Error
	})
}

// CountByStatus counts payments per status
func (r *GormPaymentRepository) CountByStatus(ctx context.Context) (map[payment.Status]int64, error) {
	var rows []struct {
		Status payment.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[payment.Status]int64, len(payment.AllStatuses))
	for _, s := range payment.AllStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func toDomainPayments(paymentModels []models.PaymentModel) []payment.Payment {
	payments := make([]payment.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments
}

// GormPaymentLogRepository implements payment.LogRepository using GORM
type GormPaymentLogRepository struct {
	db *gorm.DB
}

// NewGormPaymentLogRepository creates a new GormPaymentLogRepository
func NewGormPaymentLogRepository(db *gorm.DB) *GormPaymentLogRepository {
	return &GormPaymentLogRepository{db: db}
}

// Create appends an audit row
func (r *GormPaymentLogRepository) Create(ctx context.Context, log *payment.Log) error {
	return r.db.WithContext(ctx).Create(models.PaymentLogModelFromDomain(log)).Error
}

// FindByPayment lists a payment's rows, oldest first
func (r *GormPaymentLogRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]payment.Log, error) {
	var logModels []models.PaymentLogModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]payment.Log, len(logModels))
	for i := range logModels {
		logs[i] = *logModels[i].ToDomain()
	}
	return logs, nil
}

// Ensure repositories implement their interfaces
var (
	_ payment.PaymentRepository = (*GormPaymentRepository)(nil)
	_ payment.LogRepository     = (*GormPaymentLogRepository)(nil)
)
