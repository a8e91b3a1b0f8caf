package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail matches the normalized (lower-case) address
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindActiveStaff returns active staff accounts
	FindActiveStaff(ctx context.Context) ([]User, error)

	Save(ctx context.Context, user *User) error
}
