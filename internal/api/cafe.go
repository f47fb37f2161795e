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

// FilterRequest carries the browse filter criteria. Every field is optional;
// absent criteria impose no constraint.
type FilterRequest struct {
	HasWifi      bool     `json:"has_wifi"`       // Must have wifi
	HasSockets   bool     `json:"has_sockets"`    // Must have power sockets
	CanTakeCalls bool     `json:"can_take_calls"` // Must be phone-call friendly
	HasToilet    bool     `json:"has_toilet"`     // Must have a washroom
	Locations    []string `json:"location"`       // Acceptable locations, empty = any
	Seats        []string `json:"seats"`          // Acceptable seat buckets, empty = any
	Clear        bool     `json:"clear"`          // Reset to the unfiltered view
}

// CafeRequest is the add/edit listing payload
type CafeRequest struct {
	Name         string  `json:"name" binding:"required,max=250"`                  // Coffee shop name
	MapURL       string  `json:"map_url" binding:"required,url"`                   // Must be a well-formed URL
	ImgURL       string  `json:"img_url" binding:"required,url"`                   // Must be a well-formed URL
	Location     string  `json:"location" binding:"required"`                      // Area name
	Seats        string  `json:"seats" binding:"required"`                         // Seat-count bucket
	HasWifi      bool    `json:"has_wifi"`                                         // Wifi available
	HasSockets   bool    `json:"has_sockets"`                                      // Power sockets available
	CanTakeCalls bool    `json:"can_take_calls"`                                   // Phone-call friendly
	HasToilet    bool    `json:"has_toilet"`                                       // Washroom available
	CoffeePrice  float64 `json:"coffee_price" binding:"required,gte=0.5,lte=20"`   // Price of a cup in pounds
}

// browseView is the data context the index view renders
type browseView struct {
	Cafes     []domain.Cafe `json:"cafes"`     // Listings to show
	Locations []string      `json:"locations"` // Filter choices for location
	Seats     []string      `json:"seats"`     // Filter choices for seat count
}

// BrowseHandler returns all non-deleted cafes plus the filter choice lists
func BrowseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		var cached browseView       // Cached browse view
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, utils.BrowseCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"cafes":     cached.Cafes,     // Listings to show
				"locations": cached.Locations, // Location filter choices
				"seats":     cached.Seats,     // Seat-count filter choices
				"cached":    true,             // Indicate response is from cache
			})
			return
		}
		cafes, err := store.ListCafes(db, nil) // Unfiltered non-deleted set
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cafes"}) // Return on error
			return
		}
		locations, seats, err := store.CafeChoices(db) // Distinct choice lists
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch filter choices"}) // Return on error
			return
		}
		view := browseView{Cafes: cafes, Locations: locations, Seats: seats}
		// Cache the view for future requests
		_ = utils.SetCache(ctx, rdb, utils.BrowseCacheKey, view, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{
			"cafes":     view.Cafes,     // Listings to show
			"locations": view.Locations, // Location filter choices
			"seats":     view.Seats,     // Seat-count filter choices
			"cached":    false,          // Indicate response is not from cache
		})
	}
}

// FilterHandler applies the submitted criteria to the browse view. A clear
// request, or a payload the validator rejects, falls back to the unfiltered
// non-deleted set.
func FilterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FilterRequest // Bind JSON request to struct
		filter := &store.CafeFilter{}
		if err := c.ShouldBindJSON(&req); err != nil || req.Clear {
			// Rejected criteria or an explicit clear: no query applies
			filter = nil
		} else {
			filter.HasWifi = req.HasWifi           // Must have wifi
			filter.HasSockets = req.HasSockets     // Must have power sockets
			filter.CanTakeCalls = req.CanTakeCalls // Must be phone-call friendly
			filter.HasToilet = req.HasToilet       // Must have a washroom
			filter.Locations = req.Locations       // Acceptable locations
			filter.Seats = req.Seats               // Acceptable seat buckets
		}
		cafes, err := store.ListCafes(db, filter) // Run the filtered query
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cafes"}) // Return on error
			return
		}
		// Return the filtered listings
		c.JSON(http.StatusOK, gin.H{"cafes": cafes})
	}
}

// CafeDetailHandler returns one cafe by id; deleted cafes read as not found
func CafeDetailHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the id path parameter
		if err != nil {
			// If not a number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
			return
		}
		cafe, err := store.GetCafe(db, uint(id), false) // Public lookup excludes deleted
		if err != nil {
			// Unknown or soft-deleted cafe
			c.JSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		// Return the cafe
		c.JSON(http.StatusOK, gin.H{"cafe": cafe})
	}
}

// NewCafeChoicesHandler returns the choice lists that populate the
// add-listing form (GET /add_new)
func NewCafeChoicesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		var cached struct {
			Locations []string `json:"locations"` // Location choices
			Seats     []string `json:"seats"`     // Seat-count choices
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, utils.ChoicesCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"locations": cached.Locations, "seats": cached.Seats, "cached": true})
			return
		}
		locations, seats, err := store.CafeChoices(db) // Distinct choice lists
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch filter choices"}) // Return on error
			return
		}
		cached.Locations = locations
		cached.Seats = seats
		// Cache the choices for future requests
		_ = utils.SetCache(ctx, rdb, utils.ChoicesCacheKey, cached, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"locations": locations, "seats": seats, "cached": false})
	}
}

// AddCafeHandler creates a new listing. The price arrives as a decimal and
// is stored as a pound-prefixed string.
func AddCafeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CafeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		// Best-effort duplicate-name pre-check; the unique constraint decides
		if _, err := store.GetCafeByName(db, req.Name); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A cafe with this name already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing cafes"})
			return
		}
		cafe := domain.Cafe{
			Name:         req.Name,                           // Coffee shop name
			MapURL:       req.MapURL,                         // Map link
			ImgURL:       req.ImgURL,                         // Image link
			Location:     req.Location,                       // Area name
			Seats:        req.Seats,                          // Seat-count bucket
			HasWifi:      req.HasWifi,                        // Wifi available
			HasSockets:   req.HasSockets,                     // Power sockets available
			CanTakeCalls: req.CanTakeCalls,                   // Phone-call friendly
			HasToilet:    req.HasToilet,                      // Washroom available
			CoffeePrice:  utils.FormatPrice(req.CoffeePrice), // Stored as "£x.xx"
		}
		// Attempt to create the cafe in the database
		if err := store.CreateCafe(db, &cafe); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Creation lost the race against the unique name constraint
				c.JSON(http.StatusConflict, gin.H{"error": "A cafe with this name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add cafe"}) // Return on error
			return
		}
		// Log the new listing
		logrus.WithFields(logrus.Fields{
			"cafe_id": cafe.ID,   // New listing ID
			"name":    cafe.Name, // Coffee shop name
		}).Info("Cafe added")
		utils.InvalidateCafeCaches(context.Background(), rdb) // Drop stale browse caches
		// Return the new listing
		c.JSON(http.StatusCreated, gin.H{"cafe": cafe})
	}
}

// ReportClosureFormHandler returns the cafe the report page renders
func ReportClosureFormHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the id path parameter
		if err != nil {
			// If not a number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
			return
		}
		cafe, err := store.GetCafe(db, uint(id), false) // Public lookup excludes deleted
		if err != nil {
			// Unknown or soft-deleted cafe
			c.JSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		// Return the cafe for the report page
		c.JSON(http.StatusOK, gin.H{"cafe": cafe, "submitted": false})
	}
}

// ReportClosureHandler flags a cafe as potentially closed. Only
// authenticated callers may report; anonymous callers are sent to log in and
// nothing is recorded.
func ReportClosureHandler(db *gorm.DB, rdb *redis.Client, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the id path parameter
		if err != nil {
			// If not a number, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
			return
		}
		// The report page is public, so authentication is checked here
		// rather than by route middleware
		userID, ok := principalFromRequest(c, jwtSecret, rdb)
		if !ok {
			// Not logged in: the report is not recorded
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in to report a closure."})
			return
		}
		// Flag the cafe; repeat reports are a no-op
		if err := store.ReportClosure(db, uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cafe not found"}) // Unknown cafe
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to report closure"}) // Return on error
			return
		}
		// Log the report
		logrus.WithFields(logrus.Fields{
			"cafe_id": id,     // Reported listing
			"user_id": userID, // Reporting account
		}).Info("Closure reported")
		utils.InvalidateCafeCaches(context.Background(), rdb) // Drop stale browse caches
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Closure reported", "submitted": true})
	}
}
