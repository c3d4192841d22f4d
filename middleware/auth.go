package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/crewlink/server/cache"
	"github.com/crewlink/server/config"
	"github.com/crewlink/server/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const UserIDKey = "user_id"

// Auth validates the Bearer JWT token, checks the session cache, and
// loads the acting user's moderation state. Banned users are refused
// outright; suspended users are refused until the suspension lapses.
// Ban takes precedence over suspension; a ban whose expiry has passed
// no longer blocks access (lazy lift, the row is not rewritten here).
func Auth(sec config.SecurityConfig, c cache.Cache, db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Check session still valid in cache.
		sessionKey := "session:" + tokenStr
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		exists, err := c.Exists(cacheCtx, sessionKey)
		if err != nil || !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		var user model.User
		if err := db.WithContext(ctx.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		now := time.Now()
		if user.BanActive(now) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":  "account banned",
				"reason": user.BanReason,
			})
			return
		}
		if user.SuspensionActive(now) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":           "account suspended",
				"suspended_until": user.SuspendedUntil,
			})
			return
		}

		ctx.Set(UserIDKey, user.ID)
		ctx.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) int64 {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(int64)
	}
	return 0
}
