package auth

import "github.com/apoconnect/apoconnect/pkg/apoconnect/models"

// Session is the request-scoped identity passed explicitly to every
// service call that acts on behalf of a user.
type Session struct {
	UserID           uint            `json:"user_id"`
	Email            string          `json:"email"`
	Role             models.UserRole `json:"role"`
	OrganizationID   uint            `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
}

// NewSession builds a session for a user whose organization is loaded
func NewSession(user models.User) Session {
	return Session{
		UserID:           user.ID,
		Email:            user.Email,
		Role:             user.Role,
		OrganizationID:   user.OrganizationID,
		OrganizationName: user.Organization.Name,
	}
}
