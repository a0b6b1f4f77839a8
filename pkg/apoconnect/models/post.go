package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility controls which feed a post belongs to
type Visibility string

const (
	// VisibilityPublic posts live in the global feed and have no room
	VisibilityPublic Visibility = "PUBLIC"
	// VisibilityPrivate posts always belong to a room
	VisibilityPrivate Visibility = "PRIVATE"
)

// Post represents a content item authored by a user on behalf of their pharmacy
type Post struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	AuthorID       uint           `gorm:"not null;index" json:"author_id"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	CategoryID     uint           `gorm:"not null;index" json:"category_id"`
	RoomID         *uint          `gorm:"index" json:"room_id"`
	Title          string         `gorm:"not null" json:"title"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Excerpt        string         `json:"excerpt"` // Derived once at creation
	Visibility     Visibility     `gorm:"type:varchar(10);default:'PUBLIC';index" json:"visibility"`
	IsPinned       bool           `gorm:"default:false" json:"is_pinned"`
	ViewCount      uint           `gorm:"default:0" json:"view_count"`

	// Relationships
	Author       User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Category     Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Room         *Room        `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Tags         []PostTag    `gorm:"foreignKey:PostID" json:"tags,omitempty"`
	Likes        []Like       `gorm:"foreignKey:PostID" json:"-"`
	Bookmarks    []Bookmark   `gorm:"foreignKey:PostID" json:"-"`
	Comments     []Comment    `gorm:"foreignKey:PostID" json:"-"`
}

// Comment represents a reply to a post
type Comment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
