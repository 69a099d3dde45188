package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/service"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret, true) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a bearer token is present and
// lets anonymous requests through. A malformed token is still rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret, false) {
			return
		}
		c.Next()
	}
}

// authenticate stores the caller identity on the context and reports
// whether the chain may continue.
func authenticate(c *gin.Context, secret string, required bool) bool {
	header := c.GetHeader("Authorization")
	if header == "" && !required {
		return true
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	claims, err := service.ParseToken(raw, secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return false
	}
	userID, _ := claims.UserID()
	c.Set(userIDKey, userID)
	c.Set(userRoleKey, claims.Role)
	return true
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)
	uid, _ := id.(uuid.UUID)
	return uid
}

// GetUserIDPtr returns nil for anonymous requests.
func GetUserIDPtr(c *gin.Context) *uuid.UUID {
	id, ok := c.Get(userIDKey)
	if !ok {
		return nil
	}
	uid, ok := id.(uuid.UUID)
	if !ok {
		return nil
	}
	return &uid
}

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get(userRoleKey)
	r, _ := role.(string)
	return r
}
