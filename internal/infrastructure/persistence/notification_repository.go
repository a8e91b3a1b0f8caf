package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/notification"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEmailTemplateRepository implements notification.TemplateRepository using GORM
type GormEmailTemplateRepository struct {
	db *gorm.DB
}

// NewGormEmailTemplateRepository creates a new GormEmailTemplateRepository
func NewGormEmailTemplateRepository(db *gorm.DB) *GormEmailTemplateRepository {
	return &GormEmailTemplateRepository{db: db}
}

// FindActiveByType returns the active template of a type
func (r *GormEmailTemplateRepository) FindActiveByType(ctx context.Context, t notification.TemplateType) (*notification.Template, error) {
	return r.findOne(r.db.WithContext(ctx).Where("template_type = ? AND is_active = ?", t, true))
}

// FindByType returns the template of a type whether active or not
func (r *GormEmailTemplateRepository) FindByType(ctx context.Context, t notification.TemplateType) (*notification.Template, error) {
	return r.findOne(r.db.WithContext(ctx).Where("template_type = ?", t))
}

func (r *GormEmailTemplateRepository) findOne(query *gorm.DB) (*notification.Template, error) {
	var model models.EmailTemplateModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a template
func (r *GormEmailTemplateRepository) Save(ctx context.Context, tmpl *notification.Template) error {
	return r.db.WithContext(ctx).Save(models.EmailTemplateModelFromDomain(tmpl)).Error
}

// GormEmailLogRepository implements notification.LogRepository using GORM
type GormEmailLogRepository struct {
	db *gorm.DB
}

// NewGormEmailLogRepository creates a new GormEmailLogRepository
func NewGormEmailLogRepository(db *gorm.DB) *GormEmailLogRepository {
	return &GormEmailLogRepository{db: db}
}

// Create stores a new log
func (r *GormEmailLogRepository) Create(ctx context.Context, log *notification.Log) error {
	return r.db.WithContext(ctx).Create(models.EmailLogModelFromDomain(log)).Error
}

// Update stores status changes of an existing log
func (r *GormEmailLogRepository) Update(ctx context.Context, log *notification.Log) error {
	result := r.db.WithContext(ctx).
		Model(&models.EmailLogModel{}).
		Where("id = ?", log.ID).
		Updates(map[string]any{
			"status":        log.Status,
			"error_message": log.ErrorMessage,
			"sent_at":       log.SentAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsSentForPayment reports whether a sent email of the type exists for the payment
func (r *GormEmailLogRepository) ExistsSentForPayment(ctx context.Context, paymentID uuid.UUID, t notification.TemplateType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EmailLogModel{}).
		Where("payment_id = ? AND template_type = ? AND status = ?", paymentID, t, notification.LogStatusSent).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsForUserSince reports whether an email of the type was logged for the user at or after since
func (r *GormEmailLogRepository) ExistsForUserSince(ctx context.Context, userID uuid.UUID, t notification.TemplateType, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EmailLogModel{}).
		Where("user_id = ? AND template_type = ? AND created_at >= ?", userID, t, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountSentSince counts sent emails since the given time
func (r *GormEmailLogRepository) CountSentSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EmailLogModel{}).
		Where("status = ? AND sent_at >= ?", notification.LogStatusSent, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure repositories implement their interfaces
var (
	_ notification.TemplateRepository = (*GormEmailTemplateRepository)(nil)
	_ notification.LogRepository      = (*GormEmailLogRepository)(nil)
)
