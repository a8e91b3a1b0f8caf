package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TemplateRepository defines the interface for template persistence
type TemplateRepository interface {
	// FindActiveByType returns the active template of a type or shared.ErrNotFound
	FindActiveByType(ctx context.Context, t TemplateType) (*Template, error)

	// FindByType returns any template of a type or shared.ErrNotFound
	FindByType(ctx context.Context, t TemplateType) (*Template, error)

	// Save creates or updates a template
	Save(ctx context.Context, tmpl *Template) error
}

// LogRepository defines the interface for email log persistence
type LogRepository interface {
	// Create stores a new log
	Create(ctx context.Context, log *Log) error

	// Update stores status changes of an existing log
	Update(ctx context.Context, log *Log) error

	// ExistsSentForPayment reports whether a sent email of the type exists for the payment
	ExistsSentForPayment(ctx context.Context, paymentID uuid.UUID, t TemplateType) (bool, error)

	// ExistsForUserSince reports whether an email of the type was logged for the user at or after since
	ExistsForUserSince(ctx context.Context, userID uuid.UUID, t TemplateType, since time.Time) (bool, error)

	// CountSentSince counts sent emails since the given time
	CountSentSince(ctx context.Context, since time.Time) (int64, error)
}
