package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	AggregateModel
	OrderID           uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	Amount            decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Status            payment.Status      `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod     order.PaymentMethod `gorm:"type:varchar(20);not null"`
	TransactionID     string              `gorm:"type:varchar(100);index"`
	WaveTransactionID string              `gorm:"type:varchar(100)"`
	CompletedAt       *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		Amount:            m.Amount,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		TransactionID:     m.TransactionID,
		WaveTransactionID: m.WaveTransactionID,
		CompletedAt:       m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.OrderID = p.OrderID
	m.Amount = p.Amount
	m.Status = p.Status
	m.PaymentMethod = p.PaymentMethod
	m.TransactionID = p.TransactionID
	m.WaveTransactionID = p.WaveTransactionID
	m.CompletedAt = p.CompletedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentLogModel is the persistence model for a payment audit row.
type PaymentLogModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	PaymentID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Action    payment.LogAction `gorm:"type:varchar(50);not null;index"`
	Message   string            `gorm:"type:text"`
	DataJSON  string            `gorm:"column:data;type:jsonb;default:'{}'"`
	CreatedAt time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentLogModel) TableName() string {
	return "payment_logs"
}

// ToDomain converts the persistence model to a domain payment Log.
func (m *PaymentLogModel) ToDomain() *payment.Log {
	data := map[string]any{}
	if m.DataJSON != "" {
		if err := json.Unmarshal([]byte(m.DataJSON), &data); err != nil {
			zap.L().Named("payment.models").Warn("failed to parse payment log data",
				zap.String("payment_log_id", m.ID.String()),
				zap.String("raw_json", m.DataJSON),
				zap.Error(err))
		}
	}
	return &payment.Log{
		ID:        m.ID,
		PaymentID: m.PaymentID,
		Action:    m.Action,
		Message:   m.Message,
		Data:      data,
		CreatedAt: m.CreatedAt,
	}
}

// PaymentLogModelFromDomain creates a new persistence model from a domain payment Log.
func PaymentLogModelFromDomain(l *payment.Log) *PaymentLogModel {
	m := &PaymentLogModel{
		ID:        l.ID,
		PaymentID: l.PaymentID,
		Action:    l.Action,
		Message:   l.Message,
		DataJSON:  "{}",
		CreatedAt: l.CreatedAt,
	}
	if jsonBytes, err := json.Marshal(l.Data); err == nil {
		m.DataJSON = string(jsonBytes)
	}
	return m
}
