package models

import (
	"time"

	"gorm.io/gorm"
)

// Room represents a breakout room: a scoped sub-community owned by one pharmacy.
// Private rooms are visible to their owner and member pharmacies; open rooms to everyone.
type Room struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	IsPrivate   bool           `gorm:"not null" json:"is_private"`
	MaxMembers  *int           `json:"max_members"`

	// Relationships
	Owner    Organization  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members  []RoomMember  `gorm:"foreignKey:RoomID" json:"members,omitempty"`
	Posts    []Post        `gorm:"foreignKey:RoomID" json:"-"`
	Messages []RoomMessage `gorm:"foreignKey:RoomID" json:"-"`
}

// RoomMessage is a chat message posted inside a room
type RoomMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	RoomID    uint           `gorm:"not null;index" json:"room_id"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
}

// RoomVisibleTo limits a room query to rooms the organization can see:
// rooms it owns, rooms it is a member of, and every open room.
func RoomVisibleTo(orgID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		memberOf := db.Session(&gorm.Session{NewDB: true}).
			Model(&RoomMember{}).
			Select("room_id").
			Where("organization_id = ?", orgID)
		return db.Where("(rooms.owner_id = ? OR rooms.is_private = ? OR rooms.id IN (?))", orgID, false, memberOf)
	}
}

// RoomOpen limits a room query to open rooms, for anonymous viewers
func RoomOpen(db *gorm.DB) *gorm.DB {
	return db.Where("rooms.is_private = ?", false)
}
