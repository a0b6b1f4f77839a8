package auth

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const tokenIssuer = "apoconnect"

var (
	signingKey    = defaultSigningKey()
	tokenDuration = defaultTokenDuration()
)

// Claims represents the JWT claims. They carry the full session so no
// server-side lookup is needed to rebuild it.
type Claims struct {
	UserID           uint            `json:"user_id"`
	Email            string          `json:"email"`
	Role             models.UserRole `json:"role"`
	OrganizationID   uint            `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	jwt.RegisteredClaims
}

// Session returns the session payload carried by the claims
func (c *Claims) Session() Session {
	return Session{
		UserID:           c.UserID,
		Email:            c.Email,
		Role:             c.Role,
		OrganizationID:   c.OrganizationID,
		OrganizationName: c.OrganizationName,
	}
}

// Configure sets the signing key and token lifetime. Empty or zero values
// keep the current setting.
func Configure(secret string, lifetime time.Duration) {
	if secret != "" {
		signingKey = []byte(secret)
	}
	if lifetime > 0 {
		tokenDuration = lifetime
	}
}

// TokenDuration returns how long issued tokens stay valid
func TokenDuration() time.Duration {
	return tokenDuration
}

// defaultSigningKey returns the JWT secret from environment or a default for development
func defaultSigningKey() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "apoconnect-dev-secret-change-in-production"
	}
	return []byte(secret)
}

func defaultTokenDuration() time.Duration {
	if hours, err := strconv.Atoi(os.Getenv("JWT_EXPIRATION_HOURS")); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return 7 * 24 * time.Hour
}

// GenerateToken creates a signed session token
func GenerateToken(session Session) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:           session.UserID,
		Email:            session.Email,
		Role:             session.Role,
		OrganizationID:   session.OrganizationID,
		OrganizationName: session.OrganizationName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(session.UserID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates a session token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return signingKey, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
