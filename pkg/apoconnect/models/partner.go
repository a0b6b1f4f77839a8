package models

import (
	"time"

	"gorm.io/gorm"
)

// PartnerType classifies directory partners
type PartnerType string

const (
	PartnerTypeInsurance  PartnerType = "INSURANCE"
	PartnerTypeITService  PartnerType = "IT_SERVICE"
	PartnerTypeWholesaler PartnerType = "WHOLESALER"
	PartnerTypeConsulting PartnerType = "CONSULTING"
	PartnerTypeSoftware   PartnerType = "SOFTWARE"
	PartnerTypeOther      PartnerType = "OTHER"
)

// Partner represents a service provider listed in the directory
type Partner struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Type        PartnerType    `gorm:"type:varchar(20);default:'OTHER'" json:"type"`
	Description string         `json:"description,omitempty"`
	Website     string         `json:"website,omitempty"`
	LogoURL     string         `json:"logo_url,omitempty"`
	Verified    bool           `gorm:"default:false" json:"verified"`
	IsActive    bool           `gorm:"not null;index" json:"is_active"`

	// Relationships
	Offers []Offer `gorm:"foreignKey:PartnerID" json:"offers"`
}

// Offer is a time-bounded deal published by a partner.
// An offer without ValidUntil never expires.
type Offer struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	PartnerID   uint           `gorm:"not null;index" json:"partner_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	PriceLabel  *string        `json:"price_label"`
	ValidUntil  *time.Time     `json:"valid_until"`
	ViewCount   uint           `gorm:"default:0" json:"view_count"`
	IsActive    bool           `gorm:"not null;index" json:"is_active"`
}
