package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents a user's role within their pharmacy
type UserRole string

const (
	UserRoleOwner    UserRole = "OWNER"
	UserRoleManager  UserRole = "MANAGER"
	UserRoleEmployee UserRole = "EMPLOYEE"
)

// User represents a pharmacy staff member
type User struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"not null" json:"-"`
	FirstName      string         `gorm:"not null" json:"first_name"`
	LastName       string         `gorm:"not null" json:"last_name"`
	Role           UserRole       `gorm:"type:varchar(20);default:'EMPLOYEE'" json:"role"`
	Position       string         `json:"position,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
	Active         bool           `gorm:"not null" json:"active"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`

	// Password reset: SHA-256 of the single active token and its expiry.
	// Both are cleared when the token is consumed.
	ResetTokenHash   *string    `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// FullName returns the display name of the user
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
