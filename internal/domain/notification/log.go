package notification

import (
	"time"

	"github.com/google/uuid"
)

// LogStatus is the delivery state of an email
type LogStatus string

const (
	LogStatusPending LogStatus = "pending"
	LogStatusSent    LogStatus = "sent"
	LogStatusFailed  LogStatus = "failed"
	LogStatusBounced LogStatus = "bounced"
)

// Log records one email send attempt
type Log struct {
	ID             uuid.UUID
	TemplateID     uuid.UUID
	TemplateType   TemplateType
	RecipientEmail string
	RecipientName  string
	Subject        string
	Data           map[string]any
	Status         LogStatus
	ErrorMessage   string
	OrderID        *uuid.UUID
	PaymentID      *uuid.UUID
	UserID         *uuid.UUID
	CreatedAt      time.Time
	SentAt         *time.Time
}

// NewLog creates a pending log for a template send
func NewLog(tmpl *Template, recipientEmail, recipientName, subject string, data map[string]any) *Log {
	if data == nil {
		data = map[string]any{}
	}
	return &Log{
		ID:             uuid.New(),
		TemplateID:     tmpl.ID,
		TemplateType:   tmpl.Type,
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		Subject:        subject,
		Data:           data,
		Status:         LogStatusPending,
		CreatedAt:      time.Now(),
	}
}

// MarkSent records a successful delivery
func (l *Log) MarkSent(at time.Time) {
	l.Status = LogStatusSent
	l.SentAt = &at
	l.ErrorMessage = ""
}

// MarkFailed records a failed delivery
func (l *Log) MarkFailed(reason string) {
	l.Status = LogStatusFailed
	l.ErrorMessage = reason
}
