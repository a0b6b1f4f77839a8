package rooms

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrRoomNotFound = apperrors.NotFound("Room not found")
	ErrRoomFull     = apperrors.Conflict("Room is full")
)

// CreateInput holds a new room. IsPrivate defaults to true when omitted.
type CreateInput struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description"`
	IsPrivate   *bool  `json:"is_private"`
	MaxMembers  *int   `json:"max_members" binding:"omitempty,min=1"`
}

// OwnerView names the pharmacy that owns a room
type OwnerView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// RoomView is a room with its activity counters
type RoomView struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsPrivate    bool      `json:"is_private"`
	MaxMembers   *int      `json:"max_members"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Owner        OwnerView `json:"owner"`
	MemberCount  int64     `json:"member_count"`
	PostCount    int64     `json:"post_count"`
	MessageCount int64     `json:"message_count"`
}

// Service implements rooms and their memberships
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new rooms service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Create stores a room and enrolls the creator's pharmacy as its admin
func (s *Service) Create(ctx context.Context, session auth.Session, in CreateInput) (*RoomView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("Name is required")
	}
	if in.MaxMembers != nil && *in.MaxMembers < 1 {
		return nil, apperrors.Validation("max_members must be at least 1")
	}
	isPrivate := true
	if in.IsPrivate != nil {
		isPrivate = *in.IsPrivate
	}

	room := models.Room{
		OwnerID:     session.OrganizationID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		IsPrivate:   isPrivate,
		MaxMembers:  in.MaxMembers,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}

		member := models.RoomMember{
			RoomID:         room.ID,
			OrganizationID: session.OrganizationID,
			UserID:         session.UserID,
			Role:           models.RoomRoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, apperrors.Internal("creating room", err)
	}

	s.logger.Info("room created",
		zap.Uint("room_id", room.ID),
		zap.Uint("organization_id", session.OrganizationID),
		zap.Bool("private", isPrivate),
	)

	return s.Get(ctx, session, room.ID)
}

// List returns the rooms visible to the session's pharmacy, most recently
// active first
func (s *Service) List(ctx context.Context, session auth.Session) ([]RoomView, error) {
	var rooms []models.Room
	err := s.db.WithContext(ctx).
		Scopes(models.RoomVisibleTo(session.OrganizationID)).
		Preload("Owner").
		Order("rooms.updated_at DESC").Order("rooms.id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, apperrors.Internal("listing rooms", err)
	}
	return s.decorate(ctx, rooms)
}

// Get returns one room if it is visible to the session's pharmacy
func (s *Service) Get(ctx context.Context, session auth.Session, roomID uint) (*RoomView, error) {
	room, err := s.visibleRoom(s.db.WithContext(ctx), session, roomID)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, []models.Room{*room})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) visibleRoom(db *gorm.DB, session auth.Session, roomID uint) (*models.Room, error) {
	var room models.Room
	err := db.Scopes(models.RoomVisibleTo(session.OrganizationID)).
		Preload("Owner").
		Where("rooms.id = ?", roomID).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, apperrors.Internal("loading room", err)
	}
	return &room, nil
}

type roomCount struct {
	RoomID uint
	N      int64
}

func countBy(db *gorm.DB, model interface{}, ids []uint) (map[uint]int64, error) {
	var rows []roomCount
	err := db.Model(model).
		Select("room_id, COUNT(*) AS n").
		Where("room_id IN ?", ids).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.RoomID] = r.N
	}
	return counts, nil
}

// decorate adds member, post and message counts
func (s *Service) decorate(ctx context.Context, rooms []models.Room) ([]RoomView, error) {
	views := make([]RoomView, len(rooms))
	if len(rooms) == 0 {
		return views, nil
	}

	ids := make([]uint, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}

	db := s.db.WithContext(ctx)
	members, err := countBy(db, &models.RoomMember{}, ids)
	if err != nil {
		return nil, apperrors.Internal("counting room members", err)
	}
	posts, err := countBy(db, &models.Post{}, ids)
	if err != nil {
		return nil, apperrors.Internal("counting room posts", err)
	}
	messages, err := countBy(db, &models.RoomMessage{}, ids)
	if err != nil {
		return nil, apperrors.Internal("counting room messages", err)
	}

	for i, r := range rooms {
		views[i] = RoomView{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			IsPrivate:    r.IsPrivate,
			MaxMembers:   r.MaxMembers,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
			Owner:        OwnerView{ID: r.Owner.ID, Name: r.Owner.Name, City: r.Owner.City},
			MemberCount:  members[r.ID],
			PostCount:    posts[r.ID],
			MessageCount: messages[r.ID],
		}
	}
	return views, nil
}
