package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AdminAuthMiddleware
const (
	AdminIDKey  = "admin_id"
	UsernameKey = "username"
	EmailKey    = "email"
)

// AdminTokenCookie is the cookie the console may carry the session token in
const AdminTokenCookie = "admin_token"

// TokenLifetime is the fixed validity of an admin session token
const TokenLifetime = 24 * time.Hour

const tokenIssuer = "gamehost-admin"

// MinSecretLength is the shortest accepted signing secret
const MinSecretLength = 32

// ErrMissingToken is returned when a request carries no session token
var ErrMissingToken = errors.New("missing authentication token")

// AdminClaims represents JWT claims for admin users
type AdminClaims struct {
	AdminID  string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies admin session tokens. It is created once at
// startup and shared by every handler that needs it.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

// NewJWTManager creates a manager for the given HS256 secret
func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters long", MinSecretLength)
	}
	return &JWTManager{secret: []byte(secret), now: time.Now}, nil
}

// Generate creates a token for identity valid for TokenLifetime
func (m *JWTManager) Generate(identity models.AdminIdentity) (string, error) {
	now := m.now()
	claims := AdminClaims{
		AdminID:  identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded identity
func (m *JWTManager) Validate(tokenString string) (*models.AdminIdentity, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.AdminID == "" {
		return nil, errors.New("invalid token: missing admin id")
	}

	return &models.AdminIdentity{
		ID:       claims.AdminID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// TokenFromRequest returns the credential of the Authorization header, falling
// back to the admin_token cookie. The scheme is not checked, so a header such
// as "Basic xyz" yields a token that fails validation instead of a missing one.
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if _, token, ok := strings.Cut(strings.TrimSpace(authHeader), " "); ok {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if cookie, err := c.Cookie(AdminTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// AdminAuthMiddleware rejects requests without a token with 401 and requests
// with an invalid or expired token with 403.
func AdminAuthMiddleware(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingToken.Error()})
			return
		}

		identity, err := jwtManager.Validate(token)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(AdminIDKey, identity.ID)
		c.Set(UsernameKey, identity.Username)
		c.Set(EmailKey, identity.Email)
		c.Next()
	}
}

// CurrentAdmin returns the identity stored by AdminAuthMiddleware
func CurrentAdmin(c *gin.Context) (models.AdminIdentity, bool) {
	id := c.GetString(AdminIDKey)
	if id == "" {
		return models.AdminIdentity{}, false
	}
	return models.AdminIdentity{
		ID:       id,
		Username: c.GetString(UsernameKey),
		Email:    c.GetString(EmailKey),
	}, true
}
