package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUserNotFound = apperrors.NotFound("User not found")

// UserView is the signed-in user's own profile
type UserView struct {
	ID        uint            `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Position  string          `json:"position"`
	Bio       string          `json:"bio"`
	AvatarURL string          `json:"avatar_url"`
	Role      models.UserRole `json:"role"`
}

// ColleagueView is another user of the same pharmacy
type ColleagueView struct {
	ID        uint            `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Position  string          `json:"position"`
	AvatarURL string          `json:"avatar_url"`
	Role      models.UserRole `json:"role"`
}

// OrganizationView is the user's pharmacy with its staff and activity
type OrganizationView struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	ZipCode     string          `json:"zip_code"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Website     string          `json:"website"`
	Description string          `json:"description"`
	Verified    bool            `json:"verified"`
	Users       []ColleagueView `json:"users"`
	PostCount   int64           `json:"post_count"`
	UserCount   int64           `json:"user_count"`
}

// ProfileView combines the user and their pharmacy
type ProfileView struct {
	User         UserView         `json:"user"`
	Organization OrganizationView `json:"organization"`
}

// UpdateInput holds a partial profile update. Nil fields are left unchanged.
type UpdateInput struct {
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Position *string `json:"position" binding:"omitempty,max=100"`
}

// Service reads and updates user profiles
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new profile service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func userView(u models.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Position:  u.Position,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}

func (s *Service) loadUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Internal("loading user", err)
	}
	return &user, nil
}

// Get returns the session user's profile with their pharmacy
func (s *Service) Get(ctx context.Context, session auth.Session) (*ProfileView, error) {
	db := s.db.WithContext(ctx)

	user, err := s.loadUser(db, session.UserID)
	if err != nil {
		return nil, err
	}

	var org models.Organization
	err = db.Preload("Users", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&org, user.OrganizationID).Error
	if err != nil {
		return nil, apperrors.Internal("loading organization", err)
	}

	var postCount int64
	if err := db.Model(&models.Post{}).Where("organization_id = ?", org.ID).Count(&postCount).Error; err != nil {
		return nil, apperrors.Internal("counting posts", err)
	}

	colleagues := make([]ColleagueView, len(org.Users))
	for i, u := range org.Users {
		colleagues[i] = ColleagueView{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Position:  u.Position,
			AvatarURL: u.AvatarURL,
			Role:      u.Role,
		}
	}

	return &ProfileView{
		User: userView(*user),
		Organization: OrganizationView{
			ID:          org.ID,
			Name:        org.Name,
			Address:     org.Address,
			City:        org.City,
			ZipCode:     org.ZipCode,
			Phone:       org.Phone,
			Email:       org.Email,
			Website:     org.Website,
			Description: org.Description,
			Verified:    org.Verified,
			Users:       colleagues,
			PostCount:   postCount,
			UserCount:   int64(len(org.Users)),
		},
	}, nil
}

// Update changes the session user's bio and position
func (s *Service) Update(ctx context.Context, session auth.Session, in UpdateInput) (*UserView, error) {
	db := s.db.WithContext(ctx)

	user, err := s.loadUser(db, session.UserID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Position != nil {
		updates["position"] = strings.TrimSpace(*in.Position)
	}
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("updating profile", err)
		}
	}

	user, err = s.loadUser(db, session.UserID)
	if err != nil {
		return nil, err
	}
	view := userView(*user)
	return &view, nil
}
