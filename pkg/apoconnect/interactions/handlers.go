package interactions

import (
	"context"
	"net/http"
	"strconv"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles like and bookmark requests
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new interactions handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SuccessResponse acknowledges a removal
type SuccessResponse struct {
	Success bool `json:"success"`
}

// BookmarksResponse wraps the bookmark list
type BookmarksResponse struct {
	Bookmarks []BookmarkView `json:"bookmarks"`
}

func postID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid post ID")
	}
	return uint(id), nil
}

// Like likes a post
// @Summary Like a post
// @Tags interactions
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} Result
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (h *Handler) Like(c *gin.Context) {
	h.add(c, h.svc.Like)
}

// Unlike removes a like
// @Summary Unlike a post
// @Tags interactions
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} SuccessResponse
// @Security BearerAuth
// @Router /posts/{id}/like [delete]
func (h *Handler) Unlike(c *gin.Context) {
	h.remove(c, h.svc.Unlike)
}

// Bookmark bookmarks a post
// @Summary Bookmark a post
// @Tags interactions
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} Result
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/bookmark [post]
func (h *Handler) Bookmark(c *gin.Context) {
	h.add(c, h.svc.Bookmark)
}

// Unbookmark removes a bookmark
// @Summary Remove a bookmark
// @Tags interactions
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} SuccessResponse
// @Security BearerAuth
// @Router /posts/{id}/bookmark [delete]
func (h *Handler) Unbookmark(c *gin.Context) {
	h.remove(c, h.svc.Unbookmark)
}

// ListBookmarks returns the current user's bookmarks
// @Summary List my bookmarks
// @Tags interactions
// @Produce json
// @Success 200 {object} BookmarksResponse
// @Security BearerAuth
// @Router /bookmarks [get]
func (h *Handler) ListBookmarks(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	bookmarks, err := h.svc.ListBookmarks(c.Request.Context(), session)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, BookmarksResponse{Bookmarks: bookmarks})
}

func (h *Handler) add(c *gin.Context, op func(ctx context.Context, session auth.Session, postID uint) (Result, error)) {
	session, _ := auth.CurrentSession(c)
	id, err := postID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	result, err := op(c.Request.Context(), session, id)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) remove(c *gin.Context, op func(ctx context.Context, session auth.Session, postID uint) error) {
	session, _ := auth.CurrentSession(c)
	id, err := postID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	if err := op(c.Request.Context(), session, id); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// RegisterRoutes registers interaction routes, all of which require a session
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	protected := rg.Group("")
	protected.Use(auth.AuthMiddleware())

	protected.POST("/posts/:id/like", h.Like)
	protected.DELETE("/posts/:id/like", h.Unlike)
	protected.POST("/posts/:id/bookmark", h.Bookmark)
	protected.DELETE("/posts/:id/bookmark", h.Unbookmark)
	protected.GET("/bookmarks", h.ListBookmarks)
}
