package profile

import (
	"net/http"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles profile requests
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new profile handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Get returns the current user's profile
// @Summary Get my profile
// @Description The current user with their pharmacy, colleagues and activity counts
// @Tags profile
// @Produce json
// @Success 200 {object} ProfileView
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /profile [get]
func (h *Handler) Get(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	profile, err := h.svc.Get(c.Request.Context(), session)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update changes the current user's bio and position
// @Summary Update my profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body UpdateInput true "Fields to change"
// @Success 200 {object} UserView
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /profile [patch]
func (h *Handler) Update(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	user, err := h.svc.Update(c.Request.Context(), session, req)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterRoutes registers profile routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.AuthMiddleware())
	rg.GET("", h.Get)
	rg.PATCH("", h.Update)
}
