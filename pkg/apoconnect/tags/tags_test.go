package tags

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func createTestPost(t *testing.T, db *gorm.DB) models.Post {
	org := models.Organization{Name: "Stadt-Apotheke", Email: "info@apotheke.de"}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("Failed to create organization: %v", err)
	}
	user := models.User{OrganizationID: org.ID, Email: "max@apotheke.de", PasswordHash: "x", FirstName: "Max", LastName: "M", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	category := models.Category{Name: "Allgemein", Slug: "allgemein"}
	db.Create(&category)
	post := models.Post{AuthorID: user.ID, OrganizationID: org.ID, CategoryID: category.ID, Title: "T", Content: "C", Visibility: models.VisibilityPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(NewService(db, zap.NewNop()), zap.NewNop())
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

func getAuthHeader() string {
	token, _ := auth.GenerateToken(auth.Session{UserID: 1, Email: "max@apotheke.de", Role: models.UserRoleOwner, OrganizationID: 1})
	return "Bearer " + token
}

func TestAttachDeduplicatesBySlug(t *testing.T) {
	db := setupTestDB(t)
	post := createTestPost(t, db)

	var attached []models.Tag
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		attached, err = Attach(tx, post.ID, []string{"E-Rezept", "e-rezept", " ", "BtM"})
		return err
	})
	require.NoError(t, err)
	require.Len(t, attached, 2)
	assert.Equal(t, "E-Rezept", attached[0].Name)
	assert.Equal(t, "e-rezept", attached[0].Slug)
	assert.Equal(t, "btm", attached[1].Slug)

	var tag models.Tag
	require.NoError(t, db.Where("slug = ?", "e-rezept").First(&tag).Error)
	assert.Equal(t, int64(1), tag.UsageCount)

	var links int64
	db.Model(&models.PostTag{}).Where("post_id = ?", post.ID).Count(&links)
	assert.Equal(t, int64(2), links)
}

func TestAttachReusesExistingTag(t *testing.T) {
	db := setupTestDB(t)
	post := createTestPost(t, db)
	existing := models.Tag{Name: "e-rezept", Slug: "e-rezept", UsageCount: 128}
	require.NoError(t, db.Create(&existing).Error)

	attached, err := Attach(db, post.ID, []string{"E-REZEPT"})
	require.NoError(t, err)
	require.Len(t, attached, 1)
	assert.Equal(t, existing.ID, attached[0].ID)
	assert.Equal(t, "e-rezept", attached[0].Name)

	var tag models.Tag
	require.NoError(t, db.First(&tag, existing.ID).Error)
	assert.Equal(t, int64(129), tag.UsageCount)

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTrendingOrder(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Tag{Name: "retax", Slug: "retax", UsageCount: 74})
	db.Create(&models.Tag{Name: "e-rezept", Slug: "e-rezept", UsageCount: 128})
	db.Create(&models.Tag{Name: "btm", Slug: "btm", UsageCount: 74})
	db.Create(&models.Tag{Name: "unused", Slug: "unused"})

	tags, err := NewService(db, zap.NewNop()).Trending(context.Background(), 0)
	require.NoError(t, err)

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"e-rezept", "btm", "retax"}, names)
}

func TestTrendingHandler(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	for i, name := range []string{"a", "b", "c"} {
		db.Create(&models.Tag{Name: name, Slug: name, UsageCount: int64(i + 1)})
	}

	req, _ := http.NewRequest("GET", "/api/tags/trending?limit=2", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var tags []TagResponse
	json.Unmarshal(resp.Body.Bytes(), &tags)

	if len(tags) != 2 {
		t.Fatalf("Expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "c" {
		t.Errorf("Expected most used tag first, got %s", tags[0].Name)
	}
}

func TestSuggestHandler(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	body, _ := json.Marshal(SuggestRequest{Text: "Die Lieferengpässe bei Medikamenten betreffen auch BTM"})
	req, _ := http.NewRequest("POST", "/api/tags/suggest", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response SuggestResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if len(response.Tags) != 2 || response.Tags[0] != "medikament" || response.Tags[1] != "btm" {
		t.Errorf("Expected [medikament btm], got %v", response.Tags)
	}
}

func TestSuggestRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("POST", "/api/tags/suggest", bytes.NewBufferString(`{"text":"apotheke"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}
