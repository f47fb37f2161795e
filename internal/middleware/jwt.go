package middleware

import (
	"cafe_directory/internal/utils" // JWT utility functions
	"net/http"                      // HTTP status codes
	"strings"                       // String manipulation
	"time"                          // Fallback expiry for tokens without one

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// JWTAuthMiddleware validates JWT tokens and extracts user information.
// Tokens that were denylisted by logout are rejected even though their
// signature is still valid.
func JWTAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// Reject tokens that have been logged out
		if utils.TokenRevoked(c.Request.Context(), rdb, tokenStr) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has been logged out"})
			return
		}
		// Our tokens always carry an expiry, but a validly signed token
		// without one must not panic here
		expiresAt := time.Now()
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		c.Set("userID", claims.UserID)  // Store userID in context
		c.Set("token", tokenStr)        // Store raw token for logout
		c.Set("tokenExpiry", expiresAt) // Store expiry for logout
		c.Next()                        // Proceed to the next handler
	}
}
