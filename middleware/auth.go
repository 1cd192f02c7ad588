package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hospital-meal-api/models"
	"hospital-meal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session"

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller of the current request.
type Session struct {
	UserID uint
	Email  string
	Role   models.UserRole
}

// UserLookup loads the current state of an account.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Auth issues and checks session tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
}

func NewAuth(secret string, ttl time.Duration, users UserLookup) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, users: users}
}

// GenerateToken creates a signed JWT for a given user
func (a *Auth) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// AuthRequired validates the JWT, reloads the account and stores the session
// in the context. Role changes and deletions apply on the next request.
func (a *Auth) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := a.users.GetUser(c.Request.Context(), claims.UserID)
		if errors.Is(err, services.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "load session user", "user_id", claims.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(sessionKey, Session{UserID: user.ID, Email: user.Email, Role: user.Role})
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := LookupSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			return
		}
		for _, r := range roles {
			if s.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// LookupSession returns the session stored by AuthRequired.
func LookupSession(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// GetSession returns the caller's session. Only valid behind AuthRequired.
func GetSession(c *gin.Context) Session {
	s, _ := LookupSession(c)
	return s
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	return GetSession(c).UserID
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	return GetSession(c).Role
}
