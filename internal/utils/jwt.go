package utils

import (
	"context" // Context for Redis operations
	"time"    // Time for token expiration

	"github.com/golang-jwt/jwt/v5"  // JWT library
	"github.com/redis/go-redis/v9" // Redis client
)

// JWT Claims
type Claims struct {
	UserID               uint `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims      // Standard JWT claims
}

// GenerateJWT creates a JWT token for a given user ID
func GenerateJWT(userID uint, secret string) (string, error) {
	// Set token claims
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // Token expires in 24 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),                     // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}

// RevokeToken denylists a token in Redis until it would have expired anyway.
// Logout works by revocation: the token stays cryptographically valid, so the
// denylist is what ends the session.
func RevokeToken(ctx context.Context, rdb *redis.Client, tokenStr string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt) // Remaining token lifetime
	if ttl <= 0 {
		return nil // Already expired, nothing to revoke
	}
	return rdb.Set(ctx, "denylist:"+tokenStr, "1", ttl).Err() // Denylist entry expires with the token
}

// TokenRevoked reports whether a token has been logged out.
// Redis failures are treated as "not revoked" so that a cache outage does not
// lock every user out.
func TokenRevoked(ctx context.Context, rdb *redis.Client, tokenStr string) bool {
	n, err := rdb.Exists(ctx, "denylist:"+tokenStr).Result() // Check denylist entry
	return err == nil && n > 0                               // Revoked only on a confirmed hit
}
