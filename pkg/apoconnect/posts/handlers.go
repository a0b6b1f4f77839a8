package posts

import (
	"net/http"
	"strconv"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles post, comment, search and category requests
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new posts handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SearchResponse wraps search results
type SearchResponse struct {
	Posts []PostView `json:"posts"`
}

func optionalUint(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + key)
	}
	id := uint(v)
	return &id, nil
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.Validation("Invalid " + key)
	}
	return v, nil
}

func postID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid post ID")
	}
	return uint(id), nil
}

// List returns a feed page
// @Summary List posts
// @Description Global public feed, or the feed of one room when room_id is set
// @Tags posts
// @Produce json
// @Param category_id query int false "Category filter"
// @Param room_id query int false "Room feed"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} PostView
// @Failure 404 {object} map[string]string "Room not found"
// @Router /posts [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	var err error
	if f.CategoryID, err = optionalUint(c, "category_id"); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	if f.RoomID, err = optionalUint(c, "room_id"); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	if f.Limit, err = optionalInt(c, "limit"); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	if f.Offset, err = optionalInt(c, "offset"); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	posts, err := h.svc.List(c.Request.Context(), f, auth.Viewer(c))
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Create stores a new post
// @Summary Create a post
// @Description Tags are slugified and de-duplicated. A room_id makes the post private to that room.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreateInput true "Post"
// @Success 201 {object} PostView
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Room not found"
// @Security BearerAuth
// @Router /posts [post]
func (h *Handler) Create(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	post, err := h.svc.Create(c.Request.Context(), session, req)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Get returns a single post
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostView
// @Failure 404 {object} map[string]string "Post not found"
// @Router /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := postID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	post, err := h.svc.Get(c.Request.Context(), id, auth.Viewer(c))
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListComments returns the comments of a post
// @Summary List comments
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} CommentView
// @Router /posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	id, err := postID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	comments, err := h.svc.ListComments(c.Request.Context(), id, auth.Viewer(c))
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment comments on a post
// @Summary Add a comment
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body CommentInput true "Comment"
// @Success 201 {object} CommentView
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	session, _ := auth.CurrentSession(c)
	id, err := postID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	var req CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), session, id, req.Content)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Search finds posts in the global feed
// @Summary Search posts
// @Description Prefix the query with # to search tag names only
// @Tags posts
// @Produce json
// @Param q query string true "Query"
// @Success 200 {object} SearchResponse
// @Security BearerAuth
// @Router /search [get]
func (h *Handler) Search(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	posts, err := h.svc.Search(c.Request.Context(), c.Query("q"), session)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Posts: posts})
}

// ListCategories returns all categories
// @Summary List categories
// @Tags posts
// @Produce json
// @Success 200 {array} CategoryView
// @Router /categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// RegisterRoutes registers post routes. Reads accept anonymous requests,
// writes and search require a session.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	optional := auth.OptionalAuth()
	required := auth.AuthMiddleware()

	rg.GET("/posts", optional, h.List)
	rg.POST("/posts", required, h.Create)
	rg.GET("/posts/:id", optional, h.Get)
	rg.GET("/posts/:id/comments", optional, h.ListComments)
	rg.POST("/posts/:id/comments", required, h.AddComment)
	rg.GET("/search", required, h.Search)
	rg.GET("/categories", h.ListCategories)
}
