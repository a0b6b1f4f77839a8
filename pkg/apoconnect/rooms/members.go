package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberView is one pharmacy enrolled in a room
type MemberView struct {
	OrganizationID   uint            `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	UserID           uint            `json:"user_id"`
	UserName         string          `json:"user_name"`
	Role             models.RoomRole `json:"role"`
	JoinedAt         time.Time       `json:"joined_at"`
}

// JoinResult reports whether the pharmacy was newly enrolled
type JoinResult struct {
	Joined bool `json:"joined"`
}

// ListMembers returns the members of a visible room, admins first
func (s *Service) ListMembers(ctx context.Context, session auth.Session, roomID uint) ([]MemberView, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.visibleRoom(db, session, roomID); err != nil {
		return nil, err
	}

	var members []models.RoomMember
	err := db.Preload("Organization").Preload("User").
		Where("room_id = ?", roomID).
		Order("CASE WHEN role = 'ADMIN' THEN 0 ELSE 1 END").Order("created_at ASC").Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.Internal("listing room members", err)
	}

	views := make([]MemberView, len(members))
	for i, m := range members {
		views[i] = MemberView{
			OrganizationID:   m.OrganizationID,
			OrganizationName: m.Organization.Name,
			UserID:           m.UserID,
			UserName:         m.User.FullName(),
			Role:             m.Role,
			JoinedAt:         m.CreatedAt,
		}
	}
	return views, nil
}

// Join enrolls the session's pharmacy in an open room. Joining a room the
// pharmacy already belongs to succeeds without change. Private rooms can
// only be entered by their owner's invitation.
func (s *Service) Join(ctx context.Context, session auth.Session, roomID uint) (JoinResult, error) {
	var result JoinResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.visibleRoom(tx, session, roomID)
		if err != nil {
			return err
		}

		var existing models.RoomMember
		err = tx.Where("room_id = ? AND organization_id = ?", roomID, session.OrganizationID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Internal("checking membership", err)
		}
		if room.IsPrivate {
			return ErrRoomNotFound
		}

		if room.MaxMembers != nil {
			// concurrent joins queue on the room row before counting
			var locked models.Room
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, roomID).Error; err != nil {
				return apperrors.Internal("locking room", err)
			}
			var count int64
			if err := tx.Model(&models.RoomMember{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
				return apperrors.Internal("counting room members", err)
			}
			if count >= int64(*room.MaxMembers) {
				return ErrRoomFull
			}
		}

		member := models.RoomMember{
			RoomID:         roomID,
			OrganizationID: session.OrganizationID,
			UserID:         session.UserID,
			Role:           models.RoomRoleMember,
		}
		if err := tx.Create(&member).Error; err != nil {
			return apperrors.Internal("joining room", err)
		}
		result.Joined = true
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	if result.Joined {
		s.logger.Info("room joined",
			zap.Uint("room_id", roomID),
			zap.Uint("organization_id", session.OrganizationID),
		)
	}
	return result, nil
}
