package tags

import (
	"net/http"
	"strconv"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles tag-related requests
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new tags handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	UsageCount int64  `json:"usage_count"`
}

// SuggestRequest carries the draft text to scan
type SuggestRequest struct {
	Text string `json:"text"`
}

// SuggestResponse lists suggested tag names
type SuggestResponse struct {
	Tags []string `json:"tags"`
}

// Trending returns the most used tags
// @Summary Trending tags
// @Tags tags
// @Produce json
// @Param limit query int false "Number of tags (default 10, max 50)"
// @Success 200 {array} TagResponse
// @Router /tags/trending [get]
func (h *Handler) Trending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	tags, err := h.svc.Trending(c.Request.Context(), limit)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	response := make([]TagResponse, len(tags))
	for i, t := range tags {
		response[i] = TagResponse{
			ID:         t.ID,
			Name:       t.Name,
			Slug:       t.Slug,
			UsageCount: t.UsageCount,
		}
	}
	c.JSON(http.StatusOK, response)
}

// Suggest proposes tags for a draft post
// @Summary Suggest tags
// @Description Scans text for known domain keywords. Advisory only.
// @Tags tags
// @Accept json
// @Produce json
// @Param request body SuggestRequest true "Draft text"
// @Success 200 {object} SuggestResponse
// @Security BearerAuth
// @Router /tags/suggest [post]
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	c.JSON(http.StatusOK, SuggestResponse{Tags: ExtractTags(req.Text)})
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags/trending", h.Trending)
	rg.POST("/tags/suggest", auth.AuthMiddleware(), h.Suggest)
}
