package main

import (
	"cafe_directory/internal/api"        // Custom package for API handlers
	"cafe_directory/internal/config"     // Custom package for configuration
	"cafe_directory/internal/middleware" // Custom package for middleware
	"context"                            // context package is needed for Redis operations
	"log"                                // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	// TranslateError surfaces unique-key violations as gorm.ErrDuplicatedKey
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public browse routes
	r.GET("/", api.BrowseHandler(db, redisClient))        // Browse all listings with filter choices
	r.POST("/", api.FilterHandler(db))                    // Apply or clear browse filters
	r.GET("/cafe/:id", api.CafeDetailHandler(db))         // Listing detail endpoint
	r.GET("/add_new", api.NewCafeChoicesHandler(db, redisClient)) // Choice lists for the add form
	r.POST("/add_new", api.AddCafeHandler(db, redisClient))       // Add listing endpoint

	// Closure reports check authentication inside the handler so the page
	// itself stays public
	r.GET("/report_closure/:id", api.ReportClosureFormHandler(db))                          // Report page endpoint
	r.POST("/report_closure/:id", api.ReportClosureHandler(db, redisClient, cfg.JWTSecret)) // Submit a closure report

	// Auth routes
	r.POST("/register", api.RegisterHandler(db, cfg))      // Registration endpoint
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret))  // Login endpoint
	// Logout needs the presented token, so it sits behind the JWT middleware
	r.GET("/logout", middleware.JWTAuthMiddleware(cfg.JWTSecret, redisClient), api.LogoutHandler(redisClient))

	// Admin routes (authenticated; each handler enforces the admin gate
	// itself before doing anything)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, redisClient))
	adminGroup.GET("", api.DashboardHandler(db))                            // Moderation dashboard endpoint
	adminGroup.GET("/cafes", api.AdminListCafesHandler(db, redisClient))    // List every listing endpoint
	adminGroup.PUT("/cafes/:id", api.EditCafeHandler(db, redisClient))      // Edit listing endpoint
	adminGroup.POST("/cafes/:id/delete", api.DeleteCafeHandler(db, redisClient))   // Soft-delete endpoint
	adminGroup.POST("/cafes/:id/restore", api.RestoreCafeHandler(db, redisClient)) // Restore endpoint
	adminGroup.GET("/users", api.AdminListUsersHandler(db, redisClient))    // List accounts endpoint
	adminGroup.PUT("/users", api.UpdateAdminFlagsHandler(db, redisClient))  // Bulk admin-promotion endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
