package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // logged only
}

// TokenResult is returned by login and refresh
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains the public profile of the authenticated user
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
	IsStaff     bool
}

// LogoutInput identifies the access token to revoke
type LogoutInput struct {
	UserID    uuid.UUID
	TokenJTI  string
	TokenTTL  time.Duration
	AllTokens bool // also revoke every other session of the user
}

// CreateUserInput contains the input for account creation
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsStaff   bool
}

// ToUserInfo converts a domain user to UserInfo
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName(),
		IsStaff:     u.IsStaff,
	}
}
