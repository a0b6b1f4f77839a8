package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"gorm.io/gorm"
)

// CommentInput holds a new comment
type CommentInput struct {
	Content string `json:"content" binding:"required,notblank"`
}

// readablePost returns nil if the post exists and the viewer may read it
func (s *Service) readablePost(ctx context.Context, postID uint, viewer *auth.Session) error {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id", "room_id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return apperrors.Internal("loading post", err)
	}
	if post.RoomID != nil {
		if err := s.checkRoom(ctx, *post.RoomID, viewer); err != nil {
			return ErrPostNotFound
		}
	}
	return nil
}

// AddComment stores a comment on a post
func (s *Service) AddComment(ctx context.Context, session auth.Session, postID uint, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Content is required")
	}
	if err := s.readablePost(ctx, postID, &session); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	comment := models.Comment{PostID: postID, AuthorID: session.UserID, Content: content}
	if err := db.Create(&comment).Error; err != nil {
		return nil, apperrors.Internal("creating comment", err)
	}
	if err := db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return nil, apperrors.Internal("loading comment", err)
	}

	view := commentView(comment)
	return &view, nil
}

// ListComments returns a post's comments, oldest first
func (s *Service) ListComments(ctx context.Context, postID uint, viewer *auth.Session) ([]CommentView, error) {
	if err := s.readablePost(ctx, postID, viewer); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, apperrors.Internal("listing comments", err)
	}

	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = commentView(c)
	}
	return views, nil
}
