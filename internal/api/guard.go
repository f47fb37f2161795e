package api

import (
	"cafe_directory/internal/domain" // Importing domain models
	"cafe_directory/internal/store"  // Query layer
	"cafe_directory/internal/utils"  // JWT utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// requireUser resolves the authenticated principal established by the JWT
// middleware to an account row. On failure it writes the 401 response and
// returns ok=false; the caller must stop before performing any effect.
func requireUser(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	userID, exists := c.Get("userID") // Principal set by the JWT middleware
	if !exists {
		// No authenticated principal on this request
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	user, err := store.GetUserByID(db, userID.(uint)) // Re-read the account row
	if err != nil {
		// Token referenced an account that no longer exists
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return user, true
}

// requireAdmin is the explicit admin gate invoked at the top of every
// admin-only handler, before any mutation. The admin flag is checked against
// the database on each request, not trusted from the token.
func requireAdmin(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	user, ok := requireUser(c, db) // Must be authenticated first
	if !ok {
		return nil, false
	}
	if !user.Admin {
		// Authenticated but not an admin
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return nil, false
	}
	return user, true
}

// principalFromRequest extracts the principal from a bearer token without
// aborting the request. Used on routes that are readable anonymously but
// gate their effect on authentication (report closure).
func principalFromRequest(c *gin.Context, secret string, rdb *redis.Client) (uint, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, false // No token presented
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
	claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
	if err != nil {
		return 0, false // Invalid or expired token
	}
	if utils.TokenRevoked(c.Request.Context(), rdb, tokenStr) {
		return 0, false // Token was logged out
	}
	return claims.UserID, true
}
