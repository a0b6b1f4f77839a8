package models

import (
	"time"
)

// Tag represents a keyword label that can be attached to posts.
// UsageCount is incremented once per post association and never decremented.
type Tag struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `gorm:"not null" json:"name"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	UsageCount int64     `gorm:"default:0;not null" json:"usage_count"`
}

// PostTag is the explicit association between a post and a tag
type PostTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_tag" json:"post_id"`
	TagID     uint      `gorm:"not null;uniqueIndex:idx_post_tag;index" json:"tag_id"`

	// Relationships
	Tag Tag `gorm:"foreignKey:TagID" json:"tag"`
}

// Category is a static reference entry used to classify posts
type Category struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}
