package models

import (
	"time"
)

// RoomRole represents a member's role within a room
type RoomRole string

const (
	RoomRoleAdmin  RoomRole = "ADMIN"
	RoomRoleMember RoomRole = "MEMBER"
)

// RoomMember links a pharmacy (and the user acting for it) to a room
type RoomMember struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	RoomID         uint      `gorm:"not null;uniqueIndex:idx_room_member" json:"room_id"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_room_member;index" json:"organization_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_room_member" json:"user_id"`
	Role           RoomRole  `gorm:"type:varchar(20);default:'MEMBER'" json:"role"`

	// Relationships
	Room         Room         `gorm:"foreignKey:RoomID" json:"-"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
