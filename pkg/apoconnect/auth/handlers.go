package auth

import (
	"net/http"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles authentication requests
type Handler struct {
	svc          *Service
	logger       *zap.Logger
	secureCookie bool
}

// NewHandler creates a new auth handler. secureCookie marks the session
// cookie Secure, which production deployments behind TLS want.
func NewHandler(svc *Service, logger *zap.Logger, secureCookie bool) *Handler {
	return &Handler{svc: svc, logger: logger, secureCookie: secureCookie}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the reset request body
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the reset consumption body
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	OrganizationID uint   `json:"organization_id"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      UserResponse `json:"user"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID               uint   `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Role             string `json:"role"`
	Position         string `json:"position,omitempty"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	OrganizationID   uint   `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
}

// Register handles pharmacy registration
// @Summary Register a pharmacy
// @Description Create an organization together with its first user (role OWNER)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterInput true "Registration details"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} map[string]string "Validation error or email already registered"
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	orgID, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Success:        true,
		Message:        "Registration successful",
		OrganizationID: orgID,
	})
}

// Login handles user login
// @Summary Login
// @Description Authenticate with email and password to receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	session, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	token, err := GenerateToken(session)
	if err != nil {
		apperrors.Respond(c, h.logger, apperrors.Internal("signing session token", err))
		return
	}

	maxAge := int(TokenDuration().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresIn: int64(maxAge),
		User: UserResponse{
			ID:               session.UserID,
			Email:            session.Email,
			Role:             string(session.Role),
			OrganizationID:   session.OrganizationID,
			OrganizationName: session.OrganizationName,
		},
	})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Get the authenticated user with their organization
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	session, exists := CurrentSession(c)
	if !exists {
		apperrors.Respond(c, h.logger, apperrors.Unauthorized("Authentication required"))
		return
	}

	user, err := h.svc.Me(c.Request.Context(), session)
	if err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Role:             string(user.Role),
		Position:         user.Position,
		AvatarURL:        user.AvatarURL,
		OrganizationID:   user.OrganizationID,
		OrganizationName: user.Organization.Name,
	})
}

// Logout clears the session cookie. Tokens are stateless, so a client
// holding a bearer token simply discards it.
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out successfully"
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ForgotPassword starts a password reset
// @Summary Request password reset
// @Description Always succeeds. If the email belongs to a user, a reset link is delivered out-of-band.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]bool
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	if err := h.svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetPassword consumes a reset token
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, h.logger, apperrors.FromBinding(err))
		return
	}

	if err := h.svc.ConsumeReset(c.Request.Context(), req.Token, req.Password); err != nil {
		apperrors.Respond(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", AuthMiddleware(), h.Me)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.POST("/reset-password", h.ResetPassword)
}
