package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"giftmeet/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// JWTAuthRecipientMiddleware authenticates a recipient token (issued by the
// external auth service) and injects the recipient id into the request
// context. A token-hash entry in the auth cache allows external revocation:
// a mismatched hash for the same subject rejects the request.
func JWTAuthRecipientMiddleware() gin.HandlerFunc {
	return authMiddleware("recipient", "recipientID")
}

// JWTAuthAdminMiddleware authenticates campaign-admin tokens.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return authMiddleware("admin", "adminID")
}

func authMiddleware(requiredRole, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		subject, role, err := utils.ExtractSubjectAndRole(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		ctx := context.Background()
		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCachePrefix + role + ":" + subject

		authCache := utils.GetAuthCacheClient()
		cachedHash, err := authCache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			if cachedHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch"})
				return
			}
			_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
		case err == redis.Nil:
			_ = authCache.Set(ctx, cacheKey, computedHash, time.Hour).Err()
		default:
			// Cache unavailable: the signature check above already passed.
		}

		c.Set(contextKey, subject)
		c.Next()
	}
}
