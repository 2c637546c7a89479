package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/policy"
	"github.com/eduflow/eduflow-server-go/internal/utils/jwt"
	"github.com/eduflow/eduflow-server-go/pkg/cache"
	"github.com/eduflow/eduflow-server-go/pkg/response"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// User represents the authenticated user in middleware context. A slim
// projection of the users table; feature packages keep their own full model.
type User struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey"`
	Email       string    `gorm:"column:email"`
	FirstName   string    `gorm:"column:first_name"`
	IsStaff     bool      `gorm:"column:is_staff"`
	IsSuperuser bool      `gorm:"column:is_superuser"`
	IsModerator bool      `gorm:"column:is_moderator"`
	Active      bool      `gorm:"column:is_active"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// Role resolves the account flags once per request.
func (u *User) Role() types.Role {
	return policy.Resolve(u.IsStaff, u.IsSuperuser, u.IsModerator)
}

// AuthMiddleware holds dependencies for authentication middleware.
type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret string
	denylist  cache.Client
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(db *gorm.DB, jwtSecret string, denylist cache.Client, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		db:        db,
		jwtSecret: jwtSecret,
		denylist:  denylist,
		logger:    logger,
	}
}

// DenylistKey is the cache key prefix for revoked access tokens.
const DenylistKey = "auth:denylist:"

// AuthenticateToken validates JWT tokens and loads user data into context.
func (m *AuthMiddleware) AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.ensureAuthenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts unless the authenticated user resolves to admin.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := GetUserFromContext(c)
		if !ok {
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}

		if usr.Role() != types.RoleAdmin {
			response.ErrorWithLog(m.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*User); ok && usr != nil {
		return usr, true
	}

	return nil, false
}

func (m *AuthMiddleware) ensureAuthenticated(c *gin.Context) (*User, bool) {
	if usr, ok := GetUserFromContext(c); ok {
		return usr, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	claims, err := jwt.VerifyToken(token, m.jwtSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Token expired", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token", err)
		}
		c.Abort()
		return nil, false
	}

	if claims.UserID == uuid.Nil {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token payload", nil)
		c.Abort()
		return nil, false
	}

	// Logged-out tokens stay revoked until their natural expiry.
	if m.denylist != nil {
		if count, err := m.denylist.Exists(c.Request.Context(), DenylistKey+token); err == nil && count > 0 {
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Token revoked", nil)
			c.Abort()
			return nil, false
		}
	}

	var usr User
	if err := m.db.WithContext(c.Request.Context()).
		Table("users").
		First(&usr, "id = ?", claims.UserID).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "User not found", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		c.Abort()
		return nil, false
	}

	if !usr.Active {
		response.ErrorWithLog(m.logger, c, http.StatusForbidden, "Account is deactivated", nil)
		c.Abort()
		return nil, false
	}

	usrCopy := usr
	c.Set("user", &usrCopy)
	c.Set("userId", usr.ID)
	return &usrCopy, true
}

// RevokeToken adds an access token to the denylist until its expiry.
func RevokeToken(c *gin.Context, denylist cache.Client, token string, expiresAt time.Time) error {
	if denylist == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return denylist.Set(c.Request.Context(), DenylistKey+token, "revoked", ttl)
}
