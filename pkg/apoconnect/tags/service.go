package tags

import (
	"context"
	"strings"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultTrendingLimit = 10
	MaxTrendingLimit     = 50
)

// Service serves tag listings
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new tags service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Trending returns the most used tags
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	if limit > MaxTrendingLimit {
		limit = MaxTrendingLimit
	}

	var tags []models.Tag
	err := s.db.WithContext(ctx).
		Where("usage_count > 0").
		Order("usage_count DESC").Order("name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, apperrors.Internal("listing trending tags", err)
	}
	return tags, nil
}

// Attach associates the named tags with a post inside tx. Names are
// reduced to their slug and de-duplicated first, so each distinct tag is
// linked and counted once per post. Missing tags are created with the
// first spelling seen.
func Attach(tx *gorm.DB, postID uint, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	attached := make([]models.Tag, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		candidate := models.Tag{Name: name, Slug: slug}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&candidate).Error; err != nil {
			return nil, err
		}

		var tag models.Tag
		if err := tx.Where("slug = ?", slug).First(&tag).Error; err != nil {
			return nil, err
		}

		if err := tx.Create(&models.PostTag{PostID: postID, TagID: tag.ID}).Error; err != nil {
			return nil, err
		}

		if err := tx.Model(&models.Tag{}).Where("id = ?", tag.ID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error; err != nil {
			return nil, err
		}
		tag.UsageCount++

		attached = append(attached, tag)
	}

	return attached, nil
}
