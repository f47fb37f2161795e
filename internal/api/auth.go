package api

import (
	"cafe_directory/internal/config" // Application configuration
	"cafe_directory/internal/domain" // Importing domain models
	"cafe_directory/internal/store"  // Query layer
	"cafe_directory/internal/utils"  // Utility functions
	"errors"                         // Error inspection
	"net/http"                       // HTTP status codes
	"time"                           // Token expiry handling

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRequest is the registration form payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`           // Email must be provided and well formed
	Username string `json:"username" binding:"required,min=5,max=20"` // Username must be 5-20 characters
	Password string `json:"password" binding:"required"`              // Password must be provided
}

// LoginRequest is the login form payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// AuthResponse carries the session token back to the caller
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RegisterHandler creates a new account and logs it in immediately.
// Registering with the configured super-admin email grants the admin role.
func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		// Best-effort existence pre-check; the unique constraint is the
		// authoritative enforcement point for concurrent registrations
		if _, err := store.GetUserByEmail(db, req.Email); err == nil {
			// Email already registered, send the caller to login instead
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an account registered with this email, login instead!"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			// Lookup failed for a reason other than "no such account"
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
			return
		}
		// Hash the password before it ever touches the store
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{
			Email:    req.Email,                                            // Email address
			Username: req.Username,                                         // Display name
			Password: string(hash),                                         // Stored only as a bcrypt hash
			Admin:    cfg.SuperAdminEmail != "" && req.Email == cfg.SuperAdminEmail, // Super-admin email registers as admin
		}
		// Attempt to create the user in the database
		if err := store.CreateUser(db, &user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Creation lost the race against the unique constraints
				c.JSON(http.StatusConflict, gin.H{"error": "An account with this email or username already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"}) // Return on error
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New account ID
			"username": user.Username, // Display name
			"admin":    user.Admin,    // Whether the super-admin rule applied
		}).Info("Account registered")
		// Auto-login after registration
		token, err := utils.GenerateJWT(user.ID, cfg.JWTSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusCreated, gin.H{"message": "Account registered successfully", "token": token})
	}
}

// LoginHandler authenticates a user and returns a JWT token.
// The two failure messages intentionally mirror the observed behavior of
// telling "unknown email" apart from "wrong password"; see DESIGN.md.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := store.GetUserByEmail(db, req.Email) // Fetch user by email
		if err != nil {
			// Unknown email
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Hmm, this email doesn't exist in our records, try again."})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password, try again."})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// LogoutHandler ends the current session by denylisting the presented token
// for its remaining lifetime.
func LogoutHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenVal, exists := c.Get("token") // Raw token stored by the JWT middleware
		if !exists {
			// Route is behind the JWT middleware, so this should not happen
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		expiry, _ := c.Get("tokenExpiry") // Token expiry stored by the JWT middleware
		expiresAt, ok := expiry.(time.Time)
		if !ok {
			expiresAt = time.Now() // No expiry recorded, revoke with zero TTL
		}
		// Denylist the token until it would have expired anyway
		if err := utils.RevokeToken(c.Request.Context(), rdb, tokenVal.(string), expiresAt); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to revoke token") // Log revocation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
			return
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
