package api

import (
	"cafe_directory/internal/domain" // Importing domain models
	"cafe_directory/internal/store"  // Query layer
	"cafe_directory/internal/utils"  // Utility functions
	"context"                        // Context for Redis operations
	"errors"                         // Error inspection
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion
	"time"                           // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the account data returned to admin
type UserAdminResponse struct {
	ID       uint   `json:"id"`       // User ID
	Email    string `json:"email"`    // Email address
	Username string `json:"username"` // Display name
	Admin    bool   `json:"admin"`    // Admin flag
}

// AdminFlagRequest is one entry of the bulk admin-promotion payload
type AdminFlagRequest struct {
	ID    uint `json:"id" binding:"required"` // Account to update
	Admin bool `json:"admin"`                 // Target admin flag
}

// pageParams reads the page/page_size query parameters with the usual
// defaults and limits
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// DashboardHandler returns the moderation dashboard counters
func DashboardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any work
		if _, ok := requireAdmin(c, db); !ok {
			return
		}
		stats, err := store.Stats(db) // Count cafes, flags and accounts
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"}) // Return on error
			return
		}
		// Return the dashboard counters
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}

// AdminListCafesHandler returns every cafe, deleted ones included, with
// potentially-closed listings surfaced first
func AdminListCafesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any work
		if _, ok := requireAdmin(c, db); !ok {
			return
		}
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := utils.AdminCafesCacheKey(c.DefaultQuery("page", "1"), c.DefaultQuery("page_size", "20"))
		// Try to get cached response
		var cached struct {
			Cafes      []domain.Cafe `json:"cafes"`       // Every listing
			Page       int           `json:"page"`        // Current page
			PageSize   int           `json:"page_size"`   // Page size
			Total      int64         `json:"total"`       // Total number of listings
			TotalPages int           `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"cafes":       cached.Cafes,      // Every listing
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of listings
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c)                              // Pagination parameters
		offset := (page - 1) * pageSize                              // Calculate offset for pagination
		cafes, total, err := store.AdminListCafes(db, offset, pageSize) // Every cafe, flagged first
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cafes"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"cafes":       cafes,      // Every listing
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of listings
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// EditCafeHandler updates every mutable field of a listing, deleted ones
// included so they stay operable from the moderation view
func EditCafeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any mutation
		admin, ok := requireAdmin(c, db)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the id path parameter
		if err != nil {
			// If not a number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
			return
		}
		var req CafeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		cafe, err := store.GetCafe(db, uint(id), true) // Admin lookup includes deleted
		if err != nil {
			// Unknown cafe
			c.JSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		cafe.Name = req.Name                                  // Coffee shop name
		cafe.MapURL = req.MapURL                              // Map link
		cafe.ImgURL = req.ImgURL                              // Image link
		cafe.Location = req.Location                          // Area name
		cafe.Seats = req.Seats                                // Seat-count bucket
		cafe.HasWifi = req.HasWifi                            // Wifi available
		cafe.HasSockets = req.HasSockets                      // Power sockets available
		cafe.CanTakeCalls = req.CanTakeCalls                  // Phone-call friendly
		cafe.HasToilet = req.HasToilet                        // Washroom available
		cafe.CoffeePrice = utils.FormatPrice(req.CoffeePrice) // Stored as "£x.xx"
		// Write the listing back
		if err := store.UpdateCafe(db, cafe); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Rename collided with another listing's unique name
				c.JSON(http.StatusConflict, gin.H{"error": "A cafe with this name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cafe"}) // Return on error
			return
		}
		// Log the edit
		logrus.WithFields(logrus.Fields{
			"cafe_id":  cafe.ID,  // Edited listing
			"admin_id": admin.ID, // Acting admin
		}).Info("Cafe edited")
		utils.InvalidateCafeCaches(context.Background(), rdb) // Drop stale browse caches
		// Return the updated listing
		c.JSON(http.StatusOK, gin.H{"cafe": cafe})
	}
}

// DeleteCafeHandler soft-deletes a listing so it disappears from public
// queries while staying actionable in the moderation view. Idempotent.
func DeleteCafeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any mutation
		admin, ok := requireAdmin(c, db)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the id path parameter
		if err != nil {
			// If not a number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
			return
		}
		// Set the deleted flag; repeating the request is a no-op
		if err := store.SoftDeleteCafe(db, uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cafe not found"}) // Unknown cafe
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cafe"}) // Return on error
			return
		}
		// Log the moderation action
		logrus.WithFields(logrus.Fields{
			"cafe_id":  id,       // Deleted listing
			"admin_id": admin.ID, // Acting admin
		}).Info("Cafe deleted")
		utils.InvalidateCafeCaches(context.Background(), rdb) // Drop stale browse caches
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Cafe deleted"})
	}
}

// RestoreCafeHandler returns a listing to the active state, clearing the
// deleted and potentially-closed flags together. Idempotent.
func RestoreCafeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any mutation
		admin, ok := requireAdmin(c, db)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the id path parameter
		if err != nil {
			// If not a number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
			return
		}
		// Clear both flags in one update; repeating the request is a no-op
		if err := store.RestoreCafe(db, uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cafe not found"}) // Unknown cafe
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore cafe"}) // Return on error
			return
		}
		// Log the moderation action
		logrus.WithFields(logrus.Fields{
			"cafe_id":  id,       // Restored listing
			"admin_id": admin.ID, // Acting admin
		}).Info("Cafe restored")
		utils.InvalidateCafeCaches(context.Background(), rdb) // Drop stale browse caches
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Cafe restored"})
	}
}

// AdminListUsersHandler returns all accounts for the user-management view
func AdminListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any work
		if _, ok := requireAdmin(c, db); !ok {
			return
		}
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := utils.AdminUsersCacheKey(c.DefaultQuery("page", "1"), c.DefaultQuery("page_size", "20"))
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of accounts
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of accounts
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of accounts
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of accounts
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c)                        // Pagination parameters
		offset := (page - 1) * pageSize                        // Calculate offset for pagination
		users, total, err := store.ListUsers(db, offset, pageSize) // Page of accounts
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// Prepare response data
		resp := make([]UserAdminResponse, len(users))
		// Map accounts to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:       u.ID,       // User ID
				Email:    u.Email,    // Email address
				Username: u.Username, // Display name
				Admin:    u.Admin,    // Admin flag
			}
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"users":       resp,       // List of accounts
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of accounts
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// UpdateAdminFlagsHandler applies the bulk admin-promotion form: every
// submitted account gets its admin flag set to the submitted value
func UpdateAdminFlagsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin gate before any mutation
		admin, ok := requireAdmin(c, db)
		if !ok {
			return
		}
		var req []AdminFlagRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
			// If binding fails or the list is empty, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Map to store updates
		updates := make([]store.AdminFlagUpdate, len(req))
		for i, r := range req {
			updates[i] = store.AdminFlagUpdate{ID: r.ID, Admin: r.Admin} // Target flag per account
		}
		// Apply all flags in one transaction
		if err := store.SetAdminFlags(db, updates); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"admin_id": admin.ID,    // Acting admin
				"error":    err.Error(), // Error message
			}).Error("Bulk admin update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update users"}) // Return on error
			return
		}
		// Log the promotion
		logrus.WithFields(logrus.Fields{
			"admin_id": admin.ID, // Acting admin
			"count":    len(req), // Accounts touched
		}).Info("Admin flags updated")
		// Invalidate the cached user list
		utils.InvalidateUserCaches(context.Background(), rdb)
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Users updated"})
	}
}
