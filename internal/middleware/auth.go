package middleware

import (
	"strings"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/logger"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/pkg/apperrors"
	"cutordie_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ctxUserIDKey = "userID"
	ctxRoleKey   = "role"
	ctxUserKey   = "currentUser"
)

// AuthMiddleware verifies the bearer token and loads the user behind
// it. Tokens minted before the user's last password change are rejected
// even though their signature and expiry are fine.
func AuthMiddleware(tokens *auth.TokenIssuer, userRepo repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			abortWithError(c, apperrors.NewUnauthorizedError("You are not signed in. Please sign in to get access"))
			return
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			if apperrors.Is(err, auth.ErrExpiredToken) {
				abortWithError(c, apperrors.ErrTokenExpired)
				return
			}
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		db := dbFromGin(c)
		user, err := userRepo.FindByID(db, claims.UserID)
		if err != nil {
			// A valid token for a deleted account is just an invalid token.
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		if user.PasswordChangedAt != nil && claims.IssuedBefore(*user.PasswordChangedAt) {
			abortWithError(c, apperrors.ErrStaleToken)
			return
		}

		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxRoleKey, user.Role)
		c.Set(ctxUserKey, user)

		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission allows the request through only when the caller's
// role carries the capability. The role-capability sets live in
// internal/auth.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok || !auth.HasPermission(string(role), permission) {
			abortWithError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

func roleFromContext(c *gin.Context) (models.UserRole, bool) {
	val, exists := c.Get(ctxRoleKey)
	if !exists {
		return "", false
	}
	switch v := val.(type) {
	case models.UserRole:
		return v, true
	case string:
		return models.UserRole(v), true
	default:
		return "", false
	}
}

// GetUserID extracts the authenticated user's id from the gin context.
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return ""
	}
	id, _ := userID.(string)
	return id
}

// GetCurrentUser returns the user loaded by AuthMiddleware, if any.
func GetCurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(ctxUserKey)
	if !exists {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

// bearerToken reads the session token from the Authorization header,
// falling back to the jwt cookie browser clients carry.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	return ""
}

func abortWithError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
	c.Abort()
}

func dbFromGin(c *gin.Context) *gorm.DB {
	val, exists := c.Get(string(contextkeys.DBContextKey))
	if !exists {
		return nil
	}
	db, _ := val.(*gorm.DB)
	return db
}
