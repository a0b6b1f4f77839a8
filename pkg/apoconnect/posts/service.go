package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/tags"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultLimit     = 20
	MaxLimit         = 100
	MaxSearchResults = 50
)

var (
	ErrPostNotFound = apperrors.NotFound("Post not found")
	ErrRoomNotFound = apperrors.NotFound("Room not found")
)

// CreateInput holds a new post
type CreateInput struct {
	Title      string   `json:"title" binding:"required,notblank"`
	Content    string   `json:"content" binding:"required,notblank"`
	CategoryID uint     `json:"category_id" binding:"required"`
	Tags       []string `json:"tags"`
	RoomID     *uint    `json:"room_id"`
}

// Filter selects a feed. Without RoomID it is the global public feed.
type Filter struct {
	CategoryID *uint
	RoomID     *uint
	Limit      int
	Offset     int
}

// Service implements posts, comments, search and categories
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new posts service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// withRelations preloads everything a PostView needs
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Organization").
		Preload("Category").
		Preload("Tags.Tag")
}

// feedOrder sorts pinned posts first, then newest first
func feedOrder(db *gorm.DB) *gorm.DB {
	return db.Order("posts.is_pinned DESC").Order("posts.created_at DESC").Order("posts.id DESC")
}

// checkRoom verifies the room exists and the viewer may see it.
// Anonymous viewers only see open rooms.
func (s *Service) checkRoom(ctx context.Context, roomID uint, viewer *auth.Session) error {
	q := s.db.WithContext(ctx).Model(&models.Room{})
	if viewer != nil {
		q = q.Scopes(models.RoomVisibleTo(viewer.OrganizationID))
	} else {
		q = q.Scopes(models.RoomOpen)
	}

	var count int64
	if err := q.Where("rooms.id = ?", roomID).Count(&count).Error; err != nil {
		return apperrors.Internal("checking room access", err)
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Create stores a post with its tags. A room makes the post PRIVATE to
// that room; without one it is PUBLIC.
func (s *Service) Create(ctx context.Context, session auth.Session, in CreateInput) (*PostView, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" || in.CategoryID == 0 {
		return nil, apperrors.Validation("Title, content and category are required")
	}

	db := s.db.WithContext(ctx)

	var category models.Category
	if err := db.First(&category, in.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("Invalid category")
		}
		return nil, apperrors.Internal("loading category", err)
	}

	visibility := models.VisibilityPublic
	var roomID *uint
	if in.RoomID != nil && *in.RoomID != 0 {
		if err := s.checkRoom(ctx, *in.RoomID, &session); err != nil {
			return nil, err
		}
		id := *in.RoomID
		roomID = &id
		visibility = models.VisibilityPrivate
	}

	post := models.Post{
		AuthorID:       session.UserID,
		OrganizationID: session.OrganizationID,
		CategoryID:     category.ID,
		RoomID:         roomID,
		Title:          title,
		Content:        content,
		Excerpt:        Excerpt(content),
		Visibility:     visibility,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if _, err := tags.Attach(tx, post.ID, in.Tags); err != nil {
			return err
		}
		if roomID != nil {
			// rooms sort by activity
			return tx.Model(&models.Room{}).Where("id = ?", *roomID).
				UpdateColumn("updated_at", post.CreatedAt).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal("creating post", err)
	}

	s.logger.Info("post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("user_id", session.UserID),
		zap.String("visibility", string(visibility)),
	)

	views, err := s.load(ctx, []uint{post.ID}, &session)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one feed page. Room feeds and the global feed never mix.
func (s *Service) List(ctx context.Context, f Filter, viewer *auth.Session) ([]PostView, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := s.db.WithContext(ctx).Model(&models.Post{})
	if f.RoomID != nil {
		if err := s.checkRoom(ctx, *f.RoomID, viewer); err != nil {
			return nil, err
		}
		q = q.Where("posts.room_id = ?", *f.RoomID)
	} else {
		q = q.Where("posts.room_id IS NULL AND posts.visibility = ?", models.VisibilityPublic)
	}
	if f.CategoryID != nil {
		q = q.Where("posts.category_id = ?", *f.CategoryID)
	}

	var posts []models.Post
	if err := q.Scopes(withRelations, feedOrder).Limit(f.Limit).Offset(f.Offset).Find(&posts).Error; err != nil {
		return nil, apperrors.Internal("listing posts", err)
	}
	return s.decorate(ctx, posts, viewer)
}

// Get returns a single post and counts the view
func (s *Service) Get(ctx context.Context, id uint, viewer *auth.Session) (*PostView, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.Select("id", "room_id").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, apperrors.Internal("loading post", err)
	}
	if post.RoomID != nil {
		if err := s.checkRoom(ctx, *post.RoomID, viewer); err != nil {
			// do not reveal posts in rooms the viewer cannot see
			return nil, ErrPostNotFound
		}
	}

	if err := db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		return nil, apperrors.Internal("counting view", err)
	}

	views, err := s.load(ctx, []uint{id}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Search matches posts in the global feed. "#term" searches tag names,
// anything else searches title, content, tag names and category names.
func (s *Service) Search(ctx context.Context, query string, viewer auth.Session) ([]PostView, error) {
	query = strings.TrimSpace(query)
	tagOnly := strings.HasPrefix(query, "#")
	if tagOnly {
		query = strings.TrimSpace(strings.TrimPrefix(query, "#"))
	}
	if query == "" {
		return []PostView{}, nil
	}

	db := s.db.WithContext(ctx)
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	tagged := db.Session(&gorm.Session{NewDB: true}).
		Table("post_tags").
		Select("post_tags.post_id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where(`LOWER(tags.name) LIKE ? ESCAPE '\'`, pattern)

	q := db.Model(&models.Post{}).
		Where("posts.room_id IS NULL AND posts.visibility = ?", models.VisibilityPublic)

	if tagOnly {
		q = q.Where("posts.id IN (?)", tagged)
	} else {
		inCategory := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Category{}).
			Select("id").
			Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
		q = q.Where(
			`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\' OR posts.id IN (?) OR posts.category_id IN (?))`,
			pattern, pattern, tagged, inCategory,
		)
	}

	var posts []models.Post
	if err := q.Scopes(withRelations, feedOrder).Limit(MaxSearchResults).Find(&posts).Error; err != nil {
		return nil, apperrors.Internal("searching posts", err)
	}
	return s.decorate(ctx, posts, &viewer)
}

// ListCategories returns all categories in display order
func (s *Service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Internal("listing categories", err)
	}
	views := make([]CategoryView, len(categories))
	for i, c := range categories {
		views[i] = categoryView(c)
	}
	return views, nil
}

// load fetches posts by id in feed order and decorates them
func (s *Service) load(ctx context.Context, ids []uint, viewer *auth.Session) ([]PostView, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Scopes(withRelations, feedOrder).
		Where("posts.id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		return nil, apperrors.Internal("loading posts", err)
	}
	if len(posts) == 0 {
		return nil, ErrPostNotFound
	}
	return s.decorate(ctx, posts, viewer)
}

type postCount struct {
	PostID uint
	N      int64
}

// countBy returns per-post row counts of model for the given posts
func (s *Service) countBy(db *gorm.DB, model interface{}, ids []uint) (map[uint]int64, error) {
	var rows []postCount
	err := db.Model(model).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.N
	}
	return counts, nil
}

// viewerSet returns the posts among ids the user has a row for in model
func (s *Service) viewerSet(db *gorm.DB, model interface{}, userID uint, ids []uint) (map[uint]bool, error) {
	var postIDs []uint
	if err := db.Model(model).Where("user_id = ? AND post_id IN ?", userID, ids).Pluck("post_id", &postIDs).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(postIDs))
	for _, id := range postIDs {
		set[id] = true
	}
	return set, nil
}

// decorate adds like/comment counts and, for a viewer, the liked and
// bookmarked flags.
func (s *Service) decorate(ctx context.Context, posts []models.Post, viewer *auth.Session) ([]PostView, error) {
	views := make([]PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	db := s.db.WithContext(ctx)
	likes, err := s.countBy(db, &models.Like{}, ids)
	if err != nil {
		return nil, apperrors.Internal("counting likes", err)
	}
	comments, err := s.countBy(db, &models.Comment{}, ids)
	if err != nil {
		return nil, apperrors.Internal("counting comments", err)
	}

	var liked, bookmarked map[uint]bool
	if viewer != nil {
		if liked, err = s.viewerSet(db, &models.Like{}, viewer.UserID, ids); err != nil {
			return nil, apperrors.Internal("loading likes", err)
		}
		if bookmarked, err = s.viewerSet(db, &models.Bookmark{}, viewer.UserID, ids); err != nil {
			return nil, apperrors.Internal("loading bookmarks", err)
		}
	}

	for i, p := range posts {
		v := postView(p)
		v.LikeCount = likes[p.ID]
		v.CommentCount = comments[p.ID]
		if viewer != nil {
			isLiked, isBookmarked := liked[p.ID], bookmarked[p.ID]
			v.IsLiked = &isLiked
			v.IsBookmarked = &isBookmarked
		}
		views[i] = v
	}
	return views, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
