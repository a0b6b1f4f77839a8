package interactions

import (
	"context"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPostNotFound = apperrors.NotFound("Post not found")

// Result reports a stored like or bookmark. Created is false when the row
// already existed.
type Result struct {
	Success bool `json:"success"`
	Created bool `json:"created"`
}

// BookmarkView is one entry of a user's bookmark list
type BookmarkView struct {
	PostID       uint      `json:"post_id"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// Service implements likes and bookmarks
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new interactions service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// requirePost checks that the post exists and is readable by the session's
// organization. Posts in rooms it cannot see are reported as missing.
func (s *Service) requirePost(db *gorm.DB, session auth.Session, postID uint) error {
	visibleRooms := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Room{}).
		Select("rooms.id").
		Scopes(models.RoomVisibleTo(session.OrganizationID))

	var count int64
	err := db.Model(&models.Post{}).
		Where("posts.id = ?", postID).
		Where("(posts.room_id IS NULL OR posts.room_id IN (?))", visibleRooms).
		Count(&count).Error
	if err != nil {
		return apperrors.Internal("loading post", err)
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

// insert writes row unless the (user, post) pair already exists
func (s *Service) insert(ctx context.Context, session auth.Session, postID uint, row interface{}) (Result, error) {
	db := s.db.WithContext(ctx)
	if err := s.requirePost(db, session, postID); err != nil {
		return Result{}, err
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return Result{}, apperrors.Internal("storing interaction", res.Error)
	}
	return Result{Success: true, Created: res.RowsAffected > 0}, nil
}

// remove deletes the (user, post) row of model if there is one
func (s *Service) remove(ctx context.Context, session auth.Session, postID uint, model interface{}) error {
	db := s.db.WithContext(ctx)
	if err := s.requirePost(db, session, postID); err != nil {
		return err
	}
	if err := db.Where("user_id = ? AND post_id = ?", session.UserID, postID).Delete(model).Error; err != nil {
		return apperrors.Internal("removing interaction", err)
	}
	return nil
}

// Like records that the user likes the post. Liking twice is a no-op.
func (s *Service) Like(ctx context.Context, session auth.Session, postID uint) (Result, error) {
	return s.insert(ctx, session, postID, &models.Like{UserID: session.UserID, PostID: postID})
}

// Unlike removes the user's like. Removing a like that does not exist succeeds.
func (s *Service) Unlike(ctx context.Context, session auth.Session, postID uint) error {
	return s.remove(ctx, session, postID, &models.Like{})
}

// Bookmark saves the post for the user. Bookmarking twice is a no-op.
func (s *Service) Bookmark(ctx context.Context, session auth.Session, postID uint) (Result, error) {
	return s.insert(ctx, session, postID, &models.Bookmark{UserID: session.UserID, PostID: postID})
}

// Unbookmark removes the user's bookmark
func (s *Service) Unbookmark(ctx context.Context, session auth.Session, postID uint) error {
	return s.remove(ctx, session, postID, &models.Bookmark{})
}

// ListBookmarks returns the user's bookmarked posts, newest bookmark first
func (s *Service) ListBookmarks(ctx context.Context, session auth.Session) ([]BookmarkView, error) {
	var bookmarks []models.Bookmark
	err := s.db.WithContext(ctx).
		Joins("Post").
		Where("bookmarks.user_id = ?", session.UserID).
		Order("bookmarks.created_at DESC").Order("bookmarks.id DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, apperrors.Internal("listing bookmarks", err)
	}

	views := make([]BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Post.ID == 0 {
			continue
		}
		views = append(views, BookmarkView{
			PostID:       b.PostID,
			Title:        b.Post.Title,
			Excerpt:      b.Post.Excerpt,
			BookmarkedAt: b.CreatedAt,
		})
	}
	return views, nil
}
