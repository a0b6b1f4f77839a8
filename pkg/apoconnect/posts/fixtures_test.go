package posts

import (
	"fmt"
	"testing"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apperrors.RegisterValidators()
	r := gin.New()
	handler := NewHandler(NewService(db, zap.NewNop()), zap.NewNop())
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

// createMember creates a pharmacy with one user and returns the user's session
func createMember(t *testing.T, db *gorm.DB, name string) auth.Session {
	org := models.Organization{Name: name, Email: fmt.Sprintf("info@%s.de", name)}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("Failed to create organization: %v", err)
	}
	user := models.User{
		OrganizationID: org.ID,
		Email:          fmt.Sprintf("owner@%s.de", name),
		PasswordHash:   "x",
		FirstName:      "Max",
		LastName:       name,
		Role:           models.UserRoleOwner,
		Active:         true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	user.Organization = org
	return auth.NewSession(user)
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string, order int) models.Category {
	category := models.Category{Name: name, Slug: slug, SortOrder: order}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

func createRoom(t *testing.T, db *gorm.DB, owner auth.Session, private bool) models.Room {
	room := models.Room{OwnerID: owner.OrganizationID, Name: "Room", IsPrivate: private}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	member := models.RoomMember{RoomID: room.ID, OrganizationID: owner.OrganizationID, UserID: owner.UserID, Role: models.RoomRoleAdmin}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to create room member: %v", err)
	}
	return room
}

func getAuthHeader(session auth.Session) string {
	token, _ := auth.GenerateToken(session)
	return "Bearer " + token
}

func uintPtr(v uint) *uint { return &v }
