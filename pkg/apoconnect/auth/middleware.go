package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextKeySession is the key for the Session value in gin context
	ContextKeySession = "session"
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// SessionCookieName is the cookie set at login
	SessionCookieName = "apoconnect_session"
)

// tokenFromRequest reads the token from the Authorization header, falling
// back to the session cookie. ok is false when the header is malformed.
func tokenFromRequest(c *gin.Context) (token string, ok bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", true
}

func setSession(c *gin.Context, claims *Claims) {
	session := claims.Session()
	c.Set(ContextKeySession, session)
	c.Set(ContextKeyUserID, session.UserID)
}

// AuthMiddleware validates the session token and sets the Session in context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		setSession(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the Session when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := tokenFromRequest(c); ok && tokenString != "" {
			if claims, err := ValidateToken(tokenString); err == nil {
				setSession(c, claims)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session from the gin context
func CurrentSession(c *gin.Context) (Session, bool) {
	value, exists := c.Get(ContextKeySession)
	if !exists {
		return Session{}, false
	}
	session, ok := value.(Session)
	return session, ok
}

// Viewer returns the session as a pointer, nil for anonymous requests
func Viewer(c *gin.Context) *Session {
	session, ok := CurrentSession(c)
	if !ok {
		return nil
	}
	return &session
}
