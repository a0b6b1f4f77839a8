package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents a pharmacy, the tenant unit of ApoConnect.
// An organization and its first user are always created together at registration.
type Organization struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	ZipCode     string         `json:"zip_code"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"` // Contact address, unique across pharmacies
	Phone       string         `json:"phone,omitempty"`
	Website     string         `json:"website,omitempty"`
	Description string         `json:"description,omitempty"`
	Verified    bool           `gorm:"default:false" json:"verified"`

	// Relationships
	Users []User `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
	Posts []Post `gorm:"foreignKey:OrganizationID" json:"posts,omitempty"`
	Rooms []Room `gorm:"foreignKey:OwnerID" json:"rooms,omitempty"`
}
