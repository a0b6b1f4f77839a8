package partners

import (
	"context"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrOfferNotFound = apperrors.NotFound("Offer not found")

// OfferView is an offer as shown in the directory
type OfferView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PriceLabel  *string    `json:"price_label"`
	ValidUntil  *time.Time `json:"valid_until"`
	ViewCount   uint       `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PartnerView is a directory entry with its currently valid offers
type PartnerView struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Type        models.PartnerType `json:"type"`
	Description string             `json:"description,omitempty"`
	Website     string             `json:"website,omitempty"`
	LogoURL     string             `json:"logo_url,omitempty"`
	Verified    bool               `json:"verified"`
	Offers      []OfferView        `json:"offers"`
}

// Service serves the partner directory
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new partners service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

// List returns active partners, verified first then by name, each with its
// active offers that have not expired, newest first. An offer without an
// expiry date never expires.
func (s *Service) List(ctx context.Context) ([]PartnerView, error) {
	now := s.now().UTC()

	var partners []models.Partner
	err := s.db.WithContext(ctx).
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.
				Where("is_active = ?", true).
				Where("valid_until IS NULL OR valid_until >= ?", now).
				Order("created_at DESC").Order("id DESC")
		}).
		Where("is_active = ?", true).
		Order("verified DESC").Order("name ASC").
		Find(&partners).Error
	if err != nil {
		return nil, apperrors.Internal("listing partners", err)
	}

	views := make([]PartnerView, len(partners))
	for i, p := range partners {
		offers := make([]OfferView, len(p.Offers))
		for j, o := range p.Offers {
			offers[j] = OfferView{
				ID:          o.ID,
				Title:       o.Title,
				Description: o.Description,
				PriceLabel:  o.PriceLabel,
				ValidUntil:  o.ValidUntil,
				ViewCount:   o.ViewCount,
				CreatedAt:   o.CreatedAt,
			}
		}
		views[i] = PartnerView{
			ID:          p.ID,
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Website:     p.Website,
			LogoURL:     p.LogoURL,
			Verified:    p.Verified,
			Offers:      offers,
		}
	}
	return views, nil
}

// RecordOfferView counts one view of an active offer
func (s *Service) RecordOfferView(ctx context.Context, offerID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND is_active = ?", offerID, true).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return apperrors.Internal("counting offer view", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}
