package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/notification"
	"go.uber.org/zap"
)

// EmailTemplateModel is the persistence model for an email template.
type EmailTemplateModel struct {
	BaseModel
	Type        notification.TemplateType `gorm:"column:template_type;type:varchar(50);not null;uniqueIndex"`
	Name        string                    `gorm:"type:varchar(100);not null"`
	Subject     string                    `gorm:"type:varchar(200);not null"`
	HTMLContent string                    `gorm:"column:html_content;type:text;not null"`
	TextContent string                    `gorm:"column:text_content;type:text"`
	IsActive    bool                      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmailTemplateModel) TableName() string {
	return "email_templates"
}

// ToDomain converts the persistence model to a domain Template entity.
func (m *EmailTemplateModel) ToDomain() *notification.Template {
	return &notification.Template{
		BaseEntity:  m.BaseModel.ToDomain(),
		Type:        m.Type,
		Name:        m.Name,
		Subject:     m.Subject,
		HTMLContent: m.HTMLContent,
		TextContent: m.TextContent,
		IsActive:    m.IsActive,
	}
}

// EmailTemplateModelFromDomain creates a new persistence model from a domain Template entity.
func EmailTemplateModelFromDomain(t *notification.Template) *EmailTemplateModel {
	m := &EmailTemplateModel{
		Type:        t.Type,
		Name:        t.Name,
		Subject:     t.Subject,
		HTMLContent: t.HTMLContent,
		TextContent: t.TextContent,
		IsActive:    t.IsActive,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// EmailLogModel is the persistence model for an email send attempt.
type EmailLogModel struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primary_key"`
	TemplateID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	TemplateType   notification.TemplateType `gorm:"type:varchar(50);not null;index"`
	RecipientEmail string                    `gorm:"type:varchar(254);not null;index"`
	RecipientName  string                    `gorm:"type:varchar(200)"`
	Subject        string                    `gorm:"type:varchar(200);not null"`
	DataJSON       string                    `gorm:"column:data;type:jsonb;default:'{}'"`
	Status         notification.LogStatus    `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage   string                    `gorm:"type:text"`
	OrderID        *uuid.UUID                `gorm:"type:uuid;index"`
	PaymentID      *uuid.UUID                `gorm:"type:uuid;index"`
	UserID         *uuid.UUID                `gorm:"type:uuid;index"`
	CreatedAt      time.Time                 `gorm:"not null;index"`
	SentAt         *time.Time
}

// TableName returns the table name for GORM
func (EmailLogModel) TableName() string {
	return "email_logs"
}

// ToDomain converts the persistence model to a domain email Log.
func (m *EmailLogModel) ToDomain() *notification.Log {
	data := map[string]any{}
	if m.DataJSON != "" {
		if err := json.Unmarshal([]byte(m.DataJSON), &data); err != nil {
			zap.L().Named("notification.models").Warn("failed to parse email log data",
				zap.String("email_log_id", m.ID.String()),
				zap.String("raw_json", m.DataJSON),
				zap.Error(err))
		}
	}
	return &notification.Log{
		ID:             m.ID,
		TemplateID:     m.TemplateID,
		TemplateType:   m.TemplateType,
		RecipientEmail: m.RecipientEmail,
		RecipientName:  m.RecipientName,
		Subject:        m.Subject,
		Data:           data,
		Status:         m.Status,
		ErrorMessage:   m.ErrorMessage,
		OrderID:        m.OrderID,
		PaymentID:      m.PaymentID,
		UserID:         m.UserID,
		CreatedAt:      m.CreatedAt,
		SentAt:         m.SentAt,
	}
}

// EmailLogModelFromDomain creates a new persistence model from a domain email Log.
func EmailLogModelFromDomain(l *notification.Log) *EmailLogModel {
	m := &EmailLogModel{
		ID:             l.ID,
		TemplateID:     l.TemplateID,
		TemplateType:   l.TemplateType,
		RecipientEmail: l.RecipientEmail,
		RecipientName:  l.RecipientName,
		Subject:        l.Subject,
		DataJSON:       "{}",
		Status:         l.Status,
		ErrorMessage:   l.ErrorMessage,
		OrderID:        l.OrderID,
		PaymentID:      l.PaymentID,
		UserID:         l.UserID,
		CreatedAt:      l.CreatedAt,
		SentAt:         l.SentAt,
	}
	if jsonBytes, err := json.Marshal(l.Data); err == nil {
		m.DataJSON = string(jsonBytes)
	}
	return m
}
