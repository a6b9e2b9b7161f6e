package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/jabezinu/foxriver-backend/config"
	"github.com/jabezinu/foxriver-backend/middleware"
	"github.com/jabezinu/foxriver-backend/repositories"
	"github.com/jabezinu/foxriver-backend/routes"
	"github.com/jabezinu/foxriver-backend/services"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DatabaseName())

	// Seed the membership ladder on first boot
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		memberships := services.NewMembershipService(db)
		if err := memberships.EnsureDefaultTiers(ctx); err != nil {
			log.Fatalf("Failed to seed membership tiers: %v", err)
		}
		cancel()
	}

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Foxriver Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Register routes
	routes.SetupRoutes(e, client, redisClient)

	// Start the inactive user checker in a goroutine
	go func() {
		for {
			middleware.MarkInactiveUsers(client, 30*time.Minute)
			time.Sleep(5 * time.Minute)
		}
	}()

	// Daily salary sweep. Paying once per month is enforced by the unique
	// (userId, year, month) index, so re-running every day is safe.
	go func() {
		users := repositories.NewUserRepository(db)
		wallets := services.NewWalletService(db)
		settings := services.NewSettingsService(db)
		memberships := services.NewMembershipService(db)
		salaries := services.NewSalaryService(db, users, settings, memberships, wallets)
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			paid, failed, err := salaries.ProcessAllSalaries(ctx)
			cancel()
			if err != nil {
				log.Printf("Salary sweep failed: %v", err)
			} else {
				log.Printf("Salary sweep done: %d paid, %d failed", paid, failed)
			}
			time.Sleep(24 * time.Hour)
		}
	}()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil {
		config.CloseRedis()
		e.Logger.Fatal(err)
	}
}
