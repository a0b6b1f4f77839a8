package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/config"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/database"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	auth.SetBcryptCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

// setupTestDB creates an in-memory SQLite database with the seeded categories
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if _, err := database.EnsureCategories(db); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}
	return db
}

// setupFullServer assembles the handler exactly as cmd/apoconnect-server does
func setupFullServer(db *gorm.DB) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env: "test",
		Server: config.ServerConfig{
			BaseURL:        "http://localhost:3000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
	return server.New(server.Options{DB: db, Logger: zap.NewNop(), Config: cfg})
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.handler.ServeHTTP(resp, req)
	return resp
}

func (c *client) expect(resp *httptest.ResponseRecorder, status int, out interface{}) {
	c.t.Helper()
	if resp.Code != status {
		c.t.Fatalf("Expected status %d, got %d: %s", status, resp.Code, resp.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
			c.t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

// signUp registers a pharmacy and logs its owner in
func signUp(t *testing.T, handler http.Handler, name string) *client {
	c := &client{t: t, handler: handler}
	register := map[string]interface{}{
		"organization": map[string]string{"name": name, "email": "info@" + name + ".de", "city": "Köln"},
		"user": map[string]string{
			"email": "owner@" + name + ".de", "password": "password123",
			"first_name": "Max", "last_name": "Mustermann",
		},
	}
	c.expect(c.do("POST", "/api/auth/register", register), http.StatusCreated, nil)

	var login struct {
		Token string `json:"token"`
	}
	c.expect(c.do("POST", "/api/auth/login", map[string]string{
		"email": "OWNER@" + strings.ToUpper(name) + ".DE", "password": "password123",
	}), http.StatusOK, &login)
	if login.Token == "" {
		t.Fatal("Expected a session token")
	}
	c.token = login.Token
	return c
}

func TestHealthCheck(t *testing.T) {
	handler := setupFullServer(setupTestDB(t))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest("GET", "/health", nil))

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

func TestCategoriesSeeded(t *testing.T) {
	handler := setupFullServer(setupTestDB(t))
	anon := &client{t: t, handler: handler}

	var categories []map[string]interface{}
	anon.expect(anon.do("GET", "/api/categories", nil), http.StatusOK, &categories)
	if len(categories) != len(database.DefaultCategories) {
		t.Errorf("Expected %d categories, got %d", len(database.DefaultCategories), len(categories))
	}
}

func TestPostFlow(t *testing.T) {
	db := setupTestDB(t)
	handler := setupFullServer(db)
	alice := signUp(t, handler, "stadtapotheke")
	bob := signUp(t, handler, "landapotheke")

	var category models.Category
	db.Where("slug = ?", "it").First(&category)

	var post struct {
		ID   uint `json:"id"`
		Tags []struct {
			Slug string `json:"slug"`
		} `json:"tags"`
	}
	alice.expect(alice.do("POST", "/api/posts", map[string]interface{}{
		"title":       "E-Rezept Erfahrungen",
		"content":     "Wie klappt das **E-Rezept** bei euch?",
		"category_id": category.ID,
		"tags":        []string{"E-Rezept", "e-rezept", "Digitalisierung"},
	}), http.StatusCreated, &post)
	if len(post.Tags) != 2 {
		t.Errorf("Expected 2 distinct tags, got %d", len(post.Tags))
	}

	// Bob likes twice, the second like is a no-op
	var like struct {
		Created bool `json:"created"`
	}
	likePath := fmt.Sprintf("/api/posts/%d/like", post.ID)
	bob.expect(bob.do("POST", likePath, nil), http.StatusOK, &like)
	if !like.Created {
		t.Error("Expected first like to be created")
	}
	bob.expect(bob.do("POST", likePath, nil), http.StatusOK, &like)
	if like.Created {
		t.Error("Expected second like to be a no-op")
	}
	bob.expect(bob.do("POST", fmt.Sprintf("/api/posts/%d/bookmark", post.ID), nil), http.StatusOK, nil)

	var feed []struct {
		ID           uint  `json:"id"`
		LikeCount    int64 `json:"like_count"`
		IsLiked      *bool `json:"is_liked"`
		IsBookmarked *bool `json:"is_bookmarked"`
	}
	bob.expect(bob.do("GET", "/api/posts", nil), http.StatusOK, &feed)
	if len(feed) != 1 || feed[0].LikeCount != 1 {
		t.Fatalf("Expected one post with one like, got %+v", feed)
	}
	if feed[0].IsLiked == nil || !*feed[0].IsLiked || feed[0].IsBookmarked == nil || !*feed[0].IsBookmarked {
		t.Errorf("Expected liked and bookmarked flags for bob, got %+v", feed[0])
	}

	var search struct {
		Posts []struct {
			ID uint `json:"id"`
		} `json:"posts"`
	}
	bob.expect(bob.do("GET", "/api/search?q=%23e-rez", nil), http.StatusOK, &search)
	if len(search.Posts) != 1 {
		t.Errorf("Expected tag search to find the post, got %d", len(search.Posts))
	}

	var trending []struct {
		Slug       string `json:"slug"`
		UsageCount int64  `json:"usage_count"`
	}
	bob.expect(bob.do("GET", "/api/tags/trending", nil), http.StatusOK, &trending)
	for _, tag := range trending {
		if tag.Slug == "e-rezept" && tag.UsageCount != 1 {
			t.Errorf("Expected e-rezept usage 1, got %d", tag.UsageCount)
		}
	}

	var bookmarks struct {
		Bookmarks []struct {
			PostID uint `json:"post_id"`
		} `json:"bookmarks"`
	}
	bob.expect(bob.do("GET", "/api/bookmarks", nil), http.StatusOK, &bookmarks)
	if len(bookmarks.Bookmarks) != 1 || bookmarks.Bookmarks[0].PostID != post.ID {
		t.Errorf("Expected the post in bob's bookmarks, got %+v", bookmarks.Bookmarks)
	}
}

func TestPrivateRoomFlow(t *testing.T) {
	db := setupTestDB(t)
	handler := setupFullServer(db)
	alice := signUp(t, handler, "stadtapotheke")
	bob := signUp(t, handler, "landapotheke")

	var category models.Category
	db.Where("slug = ?", "allgemein").First(&category)

	var room struct {
		ID        uint `json:"id"`
		IsPrivate bool `json:"is_private"`
	}
	alice.expect(alice.do("POST", "/api/rooms", map[string]string{"name": "Qualitätszirkel"}), http.StatusCreated, &room)
	if !room.IsPrivate {
		t.Error("Expected new room to be private by default")
	}

	alice.expect(alice.do("POST", "/api/posts", map[string]interface{}{
		"title": "Intern", "content": "Nur für den Zirkel", "category_id": category.ID, "room_id": room.ID,
	}), http.StatusCreated, nil)

	var feed []map[string]interface{}
	bob.expect(bob.do("GET", "/api/posts", nil), http.StatusOK, &feed)
	if len(feed) != 0 {
		t.Errorf("Expected room posts to stay out of the global feed, got %d", len(feed))
	}

	bob.expect(bob.do("GET", fmt.Sprintf("/api/posts?room_id=%d", room.ID), nil), http.StatusNotFound, nil)
	bob.expect(bob.do("POST", fmt.Sprintf("/api/rooms/%d/join", room.ID), nil), http.StatusNotFound, nil)

	var rooms []map[string]interface{}
	bob.expect(bob.do("GET", "/api/rooms", nil), http.StatusOK, &rooms)
	if len(rooms) != 0 {
		t.Errorf("Expected private room to be hidden from bob, got %d", len(rooms))
	}

	alice.expect(alice.do("GET", fmt.Sprintf("/api/posts?room_id=%d", room.ID), nil), http.StatusOK, &feed)
	if len(feed) != 1 {
		t.Errorf("Expected the room feed to show the post, got %d", len(feed))
	}
}

func TestProfileAndPartners(t *testing.T) {
	db := setupTestDB(t)
	handler := setupFullServer(db)
	alice := signUp(t, handler, "stadtapotheke")

	db.Create(&models.Partner{Name: "Alpha Software", Type: models.PartnerTypeSoftware, Verified: true, IsActive: true})

	var partners []map[string]interface{}
	alice.expect(alice.do("GET", "/api/partners", nil), http.StatusOK, &partners)
	if len(partners) != 1 {
		t.Errorf("Expected 1 partner, got %d", len(partners))
	}

	alice.expect(alice.do("PATCH", "/api/profile", map[string]string{"bio": "PTA seit 2010"}), http.StatusOK, nil)

	var profile struct {
		User struct {
			Bio  string `json:"bio"`
			Role string `json:"role"`
		} `json:"user"`
		Organization struct {
			City      string `json:"city"`
			UserCount int64  `json:"user_count"`
		} `json:"organization"`
	}
	alice.expect(alice.do("GET", "/api/profile", nil), http.StatusOK, &profile)
	if profile.User.Bio != "PTA seit 2010" || profile.User.Role != string(models.UserRoleOwner) {
		t.Errorf("Unexpected profile user %+v", profile.User)
	}
	if profile.Organization.City != "Köln" || profile.Organization.UserCount != 1 {
		t.Errorf("Unexpected profile organization %+v", profile.Organization)
	}
}
