package rooms

import (
	"net/http"
	"strconv"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles room requests
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new rooms handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func roomID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid room ID")
	}
	return uint(id), nil
}

// List returns all rooms visible to the current pharmacy
// @Summary List rooms
// @Description Rooms owned by or shared with the current pharmacy, plus all open rooms
// @Tags rooms
// @Produce json
// @Success 200 {array} RoomView
// @Security BearerAuth
// @Router /rooms [get]
func (h *Handler) List(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	rooms, err := h.svc.List(c.Request.Context(), session)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// Create creates a room with the current pharmacy as admin
// @Summary Create a room
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body CreateInput true "Room details"
// @Success 201 {object} RoomView
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /rooms [post]
func (h *Handler) Create(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	room, err := h.svc.Create(c.Request.Context(), session, req)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// Get returns a specific room
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} RoomView
// @Failure 404 {object} map[string]string "Room not found"
// @Security BearerAuth
// @Router /rooms/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	session, _ := auth.CurrentSession(c)
	id, err := roomID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	room, err := h.svc.Get(c.Request.Context(), session, id)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListMembers returns the pharmacies enrolled in a room
// @Summary List room members
// @Tags rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {array} MemberView
// @Failure 404 {object} map[string]string "Room not found"
// @Security BearerAuth
// @Router /rooms/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	session, _ := auth.CurrentSession(c)
	id, err := roomID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), session, id)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// Join enrolls the current pharmacy in an open room
// @Summary Join a room
// @Tags rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} JoinResult
// @Failure 400 {object} map[string]string "Room is full"
// @Failure 404 {object} map[string]string "Room not found"
// @Security BearerAuth
// @Router /rooms/{id}/join [post]
func (h *Handler) Join(c *gin.Context) {
	session, _ := auth.CurrentSession(c)
	id, err := roomID(c)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	result, err := h.svc.Join(c.Request.Context(), session, id)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers room routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.AuthMiddleware())
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/members", h.ListMembers)
	rg.POST("/:id/join", h.Join)
}
