package models

import (
	"time"
)

// Like marks that a user liked a post. At most one row exists per (user, post);
// the row's presence is the liked state, so there is no soft delete.
type Like struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
}

// Bookmark marks that a user saved a post. Same uniqueness rules as Like.
type Bookmark struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_post;index" json:"post_id"`

	// Relationships
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
