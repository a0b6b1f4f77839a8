package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// ResetTokenTTL is how long a reset token stays valid
	ResetTokenTTL = time.Hour
	// MinPasswordLength applies to registration and password reset
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts
	MaxPasswordBytes = 72
)

var (
	ErrInvalidCredentials    = apperrors.Unauthorized("Invalid email or password")
	ErrInvalidOrExpiredToken = apperrors.Validation("Invalid or expired token")
	ErrOrganizationExists    = apperrors.Conflict("Organization already registered")
	ErrEmailExists           = apperrors.Conflict("Email already registered")
	ErrPasswordTooShort      = apperrors.Validation("Password must be at least 8 characters")
	ErrPasswordTooLong       = apperrors.Validation("Password must be at most 72 bytes")
)

// OrganizationInput holds the pharmacy half of a registration
type OrganizationInput struct {
	Name    string `json:"name" binding:"required,notblank"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
}

// UserInput holds the first user of a registration
type UserInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,notblank"`
	LastName  string `json:"last_name" binding:"required,notblank"`
}

// RegisterInput creates an organization and its owner in one step
type RegisterInput struct {
	Organization OrganizationInput `json:"organization" binding:"required"`
	User         UserInput         `json:"user" binding:"required"`
}

// Service implements registration, login and password reset
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	notifier ResetNotifier
	baseURL  string
	now      func() time.Time
}

// NewService creates a new auth service
func NewService(db *gorm.DB, logger *zap.Logger, notifier ResetNotifier, baseURL string) *Service {
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{
		db:       db,
		logger:   logger,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Register creates the organization and its first user (role OWNER) atomically
func (s *Service) Register(ctx context.Context, in RegisterInput) (uint, error) {
	orgEmail := normalizeEmail(in.Organization.Email)
	userEmail := normalizeEmail(in.User.Email)
	if strings.TrimSpace(in.Organization.Name) == "" || orgEmail == "" || userEmail == "" {
		return 0, apperrors.Validation("Organization name, organization email and user email are required")
	}
	if strings.TrimSpace(in.User.FirstName) == "" || strings.TrimSpace(in.User.LastName) == "" {
		return 0, apperrors.Validation("First and last name are required")
	}
	if err := checkPasswordLength(in.User.Password); err != nil {
		return 0, err
	}

	hashedPassword, err := HashPassword(in.User.Password)
	if err != nil {
		return 0, apperrors.Internal("hashing password", err)
	}

	org := models.Organization{
		Name:    strings.TrimSpace(in.Organization.Name),
		Address: strings.TrimSpace(in.Organization.Address),
		City:    strings.TrimSpace(in.Organization.City),
		ZipCode: strings.TrimSpace(in.Organization.ZipCode),
		Email:   orgEmail,
		Phone:   strings.TrimSpace(in.Organization.Phone),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Organization{}).Where("email = ?", orgEmail).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOrganizationExists
		}
		if err := tx.Model(&models.User{}).Where("email = ?", userEmail).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailExists
		}

		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		user := models.User{
			OrganizationID: org.ID,
			Email:          userEmail,
			PasswordHash:   hashedPassword,
			FirstName:      strings.TrimSpace(in.User.FirstName),
			LastName:       strings.TrimSpace(in.User.LastName),
			Role:           models.UserRoleOwner,
			Active:         true,
		}
		return tx.Create(&user).Error
	})

	if err != nil {
		var appErr *apperrors.Error
		switch {
		case errors.As(err, &appErr):
			return 0, appErr
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// lost a race against a concurrent registration
			return 0, ErrEmailExists
		default:
			return 0, apperrors.Internal("creating organization", err)
		}
	}

	s.logger.Info("organization registered",
		zap.Uint("organization_id", org.ID),
		zap.String("organization", org.Name),
	)
	return org.ID, nil
}

// Authenticate checks credentials and returns the session for the user.
// Unknown email, inactive account and wrong password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Preload("Organization").Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, apperrors.Internal("loading user", err)
	}

	if !user.Active || !CheckPassword(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	now := s.now()
	if err := db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		return Session{}, apperrors.Internal("recording login", err)
	}

	return NewSession(user), nil
}

// Me loads the user behind a session
func (s *Service) Me(ctx context.Context, session Session) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Organization").First(&user, session.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("loading user", err)
	}
	return &user, nil
}

// RequestReset issues a fresh reset token for the user with this email,
// replacing any earlier one. Unknown emails succeed silently.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return apperrors.Internal("loading user", err)
	}

	token := uuid.NewString()
	digest := hashResetToken(token)
	expiresAt := s.now().Add(ResetTokenTTL)

	err = db.Model(&user).Updates(map[string]interface{}{
		"reset_token_hash":   digest,
		"reset_token_expiry": expiresAt,
	}).Error
	if err != nil {
		return apperrors.Internal("storing reset token", err)
	}

	notice := ResetNotice{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		Link:      s.baseURL + "/reset-password?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt,
	}
	if err := s.notifier.NotifyReset(ctx, notice); err != nil {
		// the caller gets the same answer either way
		s.logger.Error("delivering reset token", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ConsumeReset sets a new password if the token matches an unexpired reset.
// Matching, password change and clearing the token happen in one UPDATE so a
// token can only be used once.
func (s *Service) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal("hashing password", err)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("reset_token_hash = ? AND reset_token_expiry > ?", hashResetToken(token), s.now()).
		Updates(map[string]interface{}{
			"password_hash":      hashedPassword,
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		})
	if result.Error != nil {
		return apperrors.Internal("resetting password", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOrExpiredToken
	}
	return nil
}
