package models

import "github.com/maillots/storefront/internal/domain/identity"

// UserModel is the persistence model for storefront users.
type UserModel struct {
	BaseModel
	Email        string `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName    string `gorm:"type:varchar(150)"`
	LastName     string `gorm:"type:varchar(150)"`
	PasswordHash string `gorm:"type:varchar(255);not null;default:''"`
	IsStaff      bool   `gorm:"not null;default:false;index"`
	IsActive     bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		PasswordHash: m.PasswordHash,
		IsStaff:      m.IsStaff,
		IsActive:     m.IsActive,
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		IsStaff:      u.IsStaff,
		IsActive:     u.IsActive,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
