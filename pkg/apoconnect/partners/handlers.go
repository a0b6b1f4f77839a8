package partners

import (
	"net/http"
	"strconv"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles partner directory requests
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new partners handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List returns the partner directory
// @Summary List partners
// @Description Active partners with their currently valid offers
// @Tags partners
// @Produce json
// @Success 200 {array} PartnerView
// @Security BearerAuth
// @Router /partners [get]
func (h *Handler) List(c *gin.Context) {
	partners, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, partners)
}

// RecordOfferView counts a view of an offer
// @Summary Record an offer view
// @Tags partners
// @Produce json
// @Param id path int true "Offer ID"
// @Success 204
// @Failure 404 {object} map[string]string "Offer not found"
// @Security BearerAuth
// @Router /partners/offers/{id}/view [post]
func (h *Handler) RecordOfferView(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.Respond(c, h.logger, apperrors.Validation("Invalid offer ID"))
		return
	}

	if err := h.svc.RecordOfferView(c.Request.Context(), uint(id)); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers partner routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.AuthMiddleware())
	rg.GET("", h.List)
	rg.POST("/offers/:id/view", h.RecordOfferView)
}
